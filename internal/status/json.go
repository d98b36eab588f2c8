package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Buttons       []ButtonJSON `json:"buttons"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Name          string     `json:"name"`
	ID            int        `json:"id"`
	State         string     `json:"state"`
	LastEvent     string     `json:"last_event,omitempty"`
	LastEventTime string     `json:"last_event_time,omitempty"`
	Counts        CountsJSON `json:"event_counts"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Pressed    int `json:"pressed"`
	Released   int `json:"released"`
	ShortPress int `json:"short_press"`
	LongPress  int `json:"long_press"`
	SingleTap  int `json:"single_tap"`
	DoubleTap  int `json:"double_tap"`
	TripleTap  int `json:"triple_tap"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs            int64  `json:"poll_ms"`
	PushDebounceMs    int64  `json:"push_debounce_ms"`
	ReleaseDebounceMs int64  `json:"release_debounce_ms"`
	TapExpiryMs       int64  `json:"tap_expiry_ms"`
	LongPressMs       int64  `json:"long_press_ms"`
	HeartbeatMs       int64  `json:"heartbeat_ms"`
	Broker            string `json:"broker"`
	HTTPAddr          string `json:"http_addr"`
}

func countsJSON(c logic.EventCounts) CountsJSON {
	return CountsJSON{
		Pressed:    c.Pressed,
		Released:   c.Released,
		ShortPress: c.ShortPress,
		LongPress:  c.LongPress,
		SingleTap:  c.SingleTap,
		DoubleTap:  c.DoubleTap,
		TripleTap:  c.TripleTap,
	}
}

func buildInner(snap Snapshot) StatusInner {
	buttons := make([]ButtonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		buttons[i] = ButtonJSON{
			Name:   b.Name,
			ID:     b.ID,
			State:  b.State.String(),
			Counts: countsJSON(b.Counts),
		}
		if b.LastEvent != nil {
			buttons[i].LastEvent = b.LastEvent.Type.String()
			buttons[i].LastEventTime = b.LastEvent.Timestamp.UTC().Format(time.RFC3339Nano)
		}
	}

	inner := StatusInner{
		Buttons:       buttons,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:        countsJSON(snap.Counts),
		Config: ConfigJSON{
			PollMs:            snap.Config.PollMs,
			PushDebounceMs:    snap.Config.PushDebounceMs,
			ReleaseDebounceMs: snap.Config.ReleaseDebounceMs,
			TapExpiryMs:       snap.Config.TapExpiryMs,
			LongPressMs:       snap.Config.LongPressMs,
			HeartbeatMs:       snap.Config.HeartbeatMs,
			Broker:            snap.Config.Broker,
			HTTPAddr:          snap.Config.HTTPAddr,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

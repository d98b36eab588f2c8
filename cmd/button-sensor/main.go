// Command button-sensor polls push-buttons on GPIO lines, classifies presses,
// taps and long presses, and publishes the resulting events to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

type options struct {
	poll            time.Duration
	pushDebounce    time.Duration
	releaseDebounce time.Duration
	tapExpiry       time.Duration
	longPress       time.Duration
	heartbeat       time.Duration
	chip            string
	pins            string
	names           string
	activeLow       bool
	bias            string
	broker          string
	clientID        string
	topicPrefix     string
	httpAddr        string
	printState      bool
}

func main() {
	var o options
	flag.DurationVar(&o.poll, "poll", 5*time.Millisecond, "GPIO polling interval")
	flag.DurationVar(&o.pushDebounce, "debounce", button.DefaultDebounce, "Press debounce window")
	flag.DurationVar(&o.releaseDebounce, "release-debounce", 0, "Release debounce window (0 = same as --debounce)")
	flag.DurationVar(&o.tapExpiry, "tap-expiry", button.DefaultTapExpiry, "Quiet time after which grouped taps are reported")
	flag.DurationVar(&o.longPress, "long-press", button.DefaultLongPress, "Hold time for a long press")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.StringVar(&o.pins, "pins", "17", "Comma-separated GPIO line offsets, one per button")
	flag.StringVar(&o.names, "names", "", "Comma-separated button names (default button<pin>)")
	flag.BoolVar(&o.activeLow, "active-low", true, "Buttons pull the line low when pressed")
	flag.StringVar(&o.bias, "bias", string(gpio.BiasUp), `Line bias: "up", "down" or "none"`)
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&o.clientID, "client-id", "button-sensor", "MQTT client ID")
	flag.StringVar(&o.topicPrefix, "topic-prefix", mqtt.DefaultTopicPrefix, "MQTT topic prefix (events and system topics live under it)")
	flag.StringVar(&o.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button levels and exit")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	if o.poll <= 0 {
		return fmt.Errorf("invalid --poll %v", o.poll)
	}
	if o.releaseDebounce == 0 {
		o.releaseDebounce = o.pushDebounce
	}
	bias, err := parseBias(o.bias)
	if err != nil {
		return err
	}
	pins, buttons, err := parseButtons(o.pins, o.names, logic.ButtonConfig{
		PushDebounce:    o.pushDebounce,
		ReleaseDebounce: o.releaseDebounce,
		TapExpiry:       o.tapExpiry,
		LongPress:       o.longPress,
	})
	if err != nil {
		return err
	}

	// Initialize GPIO
	gpioReader, err := gpio.NewRealReader(gpio.Config{
		Chip:      o.chip,
		Lines:     pins,
		ActiveLow: o.activeLow,
		Bias:      bias,
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if o.printState {
		levels, err := gpioReader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Print(formatLevels(buttons, levels))
		return nil
	}

	// Initialize MQTT
	topics := mqtt.NewTopics(o.topicPrefix)
	publisher, err := mqtt.NewRealPublisher(o.broker, o.clientID, topics)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:            o.poll.Milliseconds(),
		PushDebounceMs:    o.pushDebounce.Milliseconds(),
		ReleaseDebounceMs: o.releaseDebounce.Milliseconds(),
		TapExpiryMs:       o.tapExpiry.Milliseconds(),
		LongPressMs:       o.longPress.Milliseconds(),
		HeartbeatMs:       o.heartbeat.Milliseconds(),
		Broker:            o.broker,
		HTTPAddr:          o.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      mqtt.SystemStartup,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.SystemStartup, ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: buttons=%s poll=%v debounce=%v/%v tap-expiry=%v long-press=%v broker=%s topics=%s,%s heartbeat=%v",
		buttonNames(buttons), o.poll, o.pushDebounce, o.releaseDebounce, o.tapExpiry, o.longPress, o.broker, topics.Events, topics.System, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(gpioReader, publisher, publisher, tracker, buttons, o.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(gpioReader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, buttons []logic.ButtonConfig, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	detector := logic.NewDetector(buttons, now())

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(detector.CurrentState(), detector.EventCountsSnapshot())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     mqtt.SystemShutdown,
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, mqtt.SystemShutdown, signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			levels, err := gpioReader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			events := detector.Process(logic.Input{Samples: levels, Time: t})

			for _, event := range events {
				log.Printf("event: %s %s (%s)", event.Button, event.Type, event.State)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if hbData := detector.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v events=%d", hbData.Uptime, hbData.Counts.Total())

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     mqtt.SystemHeartbeat,
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					refresh()
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, mqtt.SystemHeartbeat, "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Keep the tracker current for HTTP consumers
			refresh()
		}
	}
}

// parseButtons turns the --pins and --names flags into line offsets and
// per-button classifier settings. Every button shares the timing in tmpl.
func parseButtons(pins, names string, tmpl logic.ButtonConfig) ([]int, []logic.ButtonConfig, error) {
	var offsets []int
	for _, f := range strings.Split(pins, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, nil, fmt.Errorf("invalid pin %q", f)
		}
		offsets = append(offsets, n)
	}
	if len(offsets) == 0 {
		return nil, nil, errors.New("no pins configured")
	}

	var labels []string
	if strings.TrimSpace(names) != "" {
		for _, n := range strings.Split(names, ",") {
			labels = append(labels, strings.TrimSpace(n))
		}
		if len(labels) != len(offsets) {
			return nil, nil, fmt.Errorf("got %d names for %d pins", len(labels), len(offsets))
		}
	}

	seen := make(map[int]bool, len(offsets))
	buttons := make([]logic.ButtonConfig, len(offsets))
	for i, pin := range offsets {
		if seen[pin] {
			return nil, nil, fmt.Errorf("pin %d listed twice", pin)
		}
		seen[pin] = true

		cfg := tmpl
		cfg.Name = "button" + strconv.Itoa(pin)
		if labels != nil {
			if labels[i] == "" {
				return nil, nil, fmt.Errorf("empty name for pin %d", pin)
			}
			cfg.Name = labels[i]
		}
		buttons[i] = cfg
	}
	return offsets, buttons, nil
}

func parseBias(s string) (gpio.Bias, error) {
	switch b := gpio.Bias(strings.ToLower(s)); b {
	case gpio.BiasUp, gpio.BiasDown, gpio.BiasNone:
		return b, nil
	}
	return "", fmt.Errorf("invalid --bias %q", s)
}

func buttonNames(buttons []logic.ButtonConfig) string {
	names := make([]string, len(buttons))
	for i, b := range buttons {
		names[i] = b.Name
	}
	return strings.Join(names, ",")
}

// formatLevels renders one "name: STATE" line per button for --print-state.
func formatLevels(buttons []logic.ButtonConfig, levels []int) string {
	var sb strings.Builder
	for i, b := range buttons {
		state := "UNKNOWN"
		if i < len(levels) {
			state = button.Released.String()
			if levels[i] != 0 {
				state = button.Pressed.String()
			}
		}
		fmt.Fprintf(&sb, "%s: %s\n", b.Name, state)
	}
	return sb.String()
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

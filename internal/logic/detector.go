package logic

import (
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// Detector runs one classifier per configured button and collects the
// events they produce.
type Detector struct {
	buttons       []*channel
	startTime     time.Time
	now           time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

type channel struct {
	name      string
	c         *button.Classifier
	counts    EventCounts
	lastEvent *Event
	// Gesture events dispatched during the current Process call
	gestures []button.Event
}

// NewDetector creates a detector for the given buttons. Button ids are their
// index in buttons. The startTime anchors the classifiers' millisecond clock
// and is used for calculating uptime in heartbeat events.
func NewDetector(buttons []ButtonConfig, startTime time.Time) *Detector {
	d := &Detector{
		startTime:     startTime,
		now:           startTime,
		lastHeartbeat: startTime,
	}
	for i, cfg := range buttons {
		ch := &channel{name: cfg.Name}
		ch.c = button.New(i, d.millis, func(_ int, ev button.Event) {
			ch.gestures = append(ch.gestures, ev)
		})
		if cfg.PushDebounce > 0 {
			ch.c.SetPushDebounce(cfg.PushDebounce)
		}
		if cfg.ReleaseDebounce > 0 {
			ch.c.SetReleaseDebounce(cfg.ReleaseDebounce)
		}
		if cfg.TapExpiry > 0 {
			ch.c.SetTapExpiry(cfg.TapExpiry)
		}
		if cfg.LongPress > 0 {
			ch.c.SetLongPress(cfg.LongPress)
		}
		d.buttons = append(d.buttons, ch)
	}
	return d
}

// millis is the classifiers' clock: milliseconds from startTime to the time
// of the input being processed. It wraps after ~49 days, which the
// classifier tolerates.
func (d *Detector) millis() uint32 {
	return uint32(d.now.Sub(d.startTime).Milliseconds())
}

// Process feeds one poll to the classifiers and returns any events produced.
// A settled state change yields a PRESSED or RELEASED event, followed by
// whatever gesture the classifier resolved on the same sample.
func (d *Detector) Process(input Input) []Event {
	d.now = input.Time

	var events []Event
	for i, ch := range d.buttons {
		if i >= len(input.Samples) {
			break
		}
		ch.gestures = ch.gestures[:0]
		changed := ch.c.UpdateWithGestures(input.Samples[i])

		state := ch.c.State()
		if changed {
			edge := button.EventReleased
			if state == button.Pressed {
				edge = button.EventPressed
			}
			events = append(events, d.record(ch, i, edge, state))
		}
		for _, g := range ch.gestures {
			events = append(events, d.record(ch, i, g, state))
		}
	}
	return events
}

func (d *Detector) record(ch *channel, id int, ev button.Event, state button.State) Event {
	e := Event{
		Timestamp: d.now,
		Button:    ch.name,
		ID:        id,
		Type:      ev,
		State:     state,
	}
	ch.counts.add(ev)
	d.eventCounts.add(ev)
	last := e
	ch.lastEvent = &last
	return e
}

// CurrentState returns the state of every button in configuration order.
func (d *Detector) CurrentState() []ButtonState {
	out := make([]ButtonState, len(d.buttons))
	for i, ch := range d.buttons {
		out[i] = ButtonState{
			Name:   ch.name,
			ID:     i,
			State:  ch.c.State(),
			Counts: ch.counts,
		}
		if ch.lastEvent != nil {
			last := *ch.lastEvent
			out[i].LastEvent = &last
		}
	}
	return out
}

// EventCountsSnapshot returns the event totals across all buttons.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}

// Package logic turns polled button samples into timestamped events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// ButtonConfig describes one button. Zero durations keep the classifier defaults.
type ButtonConfig struct {
	Name            string
	PushDebounce    time.Duration
	ReleaseDebounce time.Duration
	TapExpiry       time.Duration
	LongPress       time.Duration
}

// Event is a button event to be published.
type Event struct {
	Timestamp time.Time
	Button    string
	ID        int
	Type      button.Event
	// Settled state of the button when the event was produced
	State button.State
}

// Input is a single poll of all buttons.
type Input struct {
	// Raw samples, one per configured button, in configuration order.
	// Only zero/non-zero is significant.
	Samples []int
	Time    time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Pressed    int
	Released   int
	ShortPress int
	LongPress  int
	SingleTap  int
	DoubleTap  int
	TripleTap  int
}

func (c *EventCounts) add(ev button.Event) {
	switch ev {
	case button.EventPressed:
		c.Pressed++
	case button.EventReleased:
		c.Released++
	case button.EventShortPress:
		c.ShortPress++
	case button.EventLongPress:
		c.LongPress++
	case button.EventSingleTap:
		c.SingleTap++
	case button.EventDoubleTap:
		c.DoubleTap++
	case button.EventTripleTap:
		c.TripleTap++
	}
}

// Total returns the sum of all counters.
func (c EventCounts) Total() int {
	return c.Pressed + c.Released + c.ShortPress + c.LongPress + c.SingleTap + c.DoubleTap + c.TripleTap
}

// ButtonState is a point-in-time view of one button.
type ButtonState struct {
	Name      string
	ID        int
	State     button.State
	Counts    EventCounts
	LastEvent *Event // nil until the first event
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

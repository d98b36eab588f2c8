// Package button classifies debounced push-button input into press, tap and
// long-press events. It performs no I/O: callers poll the pin themselves and
// hand each raw sample to a Classifier. Time comes from an injectable Clock.
package button

import "time"

// State is the settled (debounced) level of a button.
type State uint8

const (
	Released State = iota
	Pressed
)

func (s State) String() string {
	if s == Pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// Event is a semantic event produced by a Classifier.
type Event uint8

const (
	EventReleased Event = iota
	EventPressed
	EventShortPress
	EventLongPress
	EventSingleTap
	EventDoubleTap
	EventTripleTap
)

var eventNames = [...]string{
	EventReleased:   "RELEASED",
	EventPressed:    "PRESSED",
	EventShortPress: "SHORT_PRESS",
	EventLongPress:  "LONG_PRESS",
	EventSingleTap:  "SINGLE_TAP",
	EventDoubleTap:  "DOUBLE_TAP",
	EventTripleTap:  "TRIPLE_TAP",
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "UNKNOWN"
}

// Handler receives events for the button with the given id.
// It runs synchronously inside UpdateWithGestures and must not block or call
// back into the same Classifier.
type Handler func(id int, ev Event)

// Clock returns a monotonic millisecond tick count. The count may wrap;
// elapsed times are computed with unsigned subtraction.
type Clock func() uint32

// Default timing windows.
const (
	DefaultDebounce  = 20 * time.Millisecond
	DefaultTapExpiry = 100 * time.Millisecond
	DefaultLongPress = 1000 * time.Millisecond
)

// MonotonicClock returns a Clock counting milliseconds from the moment it is
// created, using the runtime's monotonic clock.
func MonotonicClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

func noopHandler(int, Event) {}

func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d.Milliseconds())
}

package logic

import (
	"testing"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// poller feeds a Detector at a fixed cadence starting at start.
type poller struct {
	d     *Detector
	start time.Time
	at    time.Duration
	poll  time.Duration
}

func newPoller(d *Detector, start time.Time) *poller {
	return &poller{d: d, start: start, poll: 5 * time.Millisecond}
}

// hold polls the same samples for dur and returns the events produced.
func (p *poller) hold(dur time.Duration, samples ...int) []Event {
	var events []Event
	for elapsed := time.Duration(0); elapsed < dur; elapsed += p.poll {
		events = append(events, p.d.Process(Input{Samples: samples, Time: p.start.Add(p.at)})...)
		p.at += p.poll
	}
	return events
}

func eventTypes(events []Event) []button.Event {
	out := make([]button.Event, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func assertTypes(t *testing.T, events []Event, want ...button.Event) {
	t.Helper()
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

var hall = []ButtonConfig{{Name: "hall"}}

func TestNewDetector(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector([]ButtonConfig{{Name: "a"}, {Name: "b"}}, startTime)
	if d == nil {
		t.Fatal("NewDetector returned nil")
	}
	if len(d.buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(d.buttons))
	}
	if !d.startTime.Equal(startTime) {
		t.Errorf("expected startTime %v, got %v", startTime, d.startTime)
	}
	if !d.lastHeartbeat.Equal(startTime) {
		t.Errorf("expected lastHeartbeat %v, got %v", startTime, d.lastHeartbeat)
	}
	if d.buttons[1].c.ID() != 1 {
		t.Errorf("expected button id 1, got %d", d.buttons[1].c.ID())
	}
}

func TestNoEventsWhileIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	if events := p.hold(10*time.Second, 0); len(events) != 0 {
		t.Errorf("expected no events for idle input, got %v", eventTypes(events))
	}
}

func TestShortPressProducesEdgesAndTap(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	var events []Event
	events = append(events, p.hold(100*time.Millisecond, 0)...)
	events = append(events, p.hold(200*time.Millisecond, 1)...)
	events = append(events, p.hold(300*time.Millisecond, 0)...)

	assertTypes(t, events,
		button.EventPressed,
		button.EventReleased,
		button.EventShortPress,
		button.EventSingleTap,
	)

	wantTimes := []time.Duration{125, 325, 325, 425}
	for i, ms := range wantTimes {
		want := now.Add(ms * time.Millisecond)
		if !events[i].Timestamp.Equal(want) {
			t.Errorf("event %d (%s): timestamp %v, want %v", i, events[i].Type, events[i].Timestamp, want)
		}
		if events[i].Button != "hall" {
			t.Errorf("event %d: button %q, want hall", i, events[i].Button)
		}
	}
	if events[0].State != button.Pressed {
		t.Errorf("PRESSED event state: got %s", events[0].State)
	}
	if events[1].State != button.Released {
		t.Errorf("RELEASED event state: got %s", events[1].State)
	}
}

func TestBounceProducesNoEvents(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	var events []Event
	for i := 0; i < 20; i++ {
		events = append(events, p.hold(10*time.Millisecond, 1)...)
		events = append(events, p.hold(5*time.Millisecond, 0)...)
	}
	events = append(events, p.hold(time.Second, 0)...)
	if len(events) != 0 {
		t.Errorf("expected bounce to be rejected, got %v", eventTypes(events))
	}
}

func TestDoubleTap(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	var events []Event
	events = append(events, p.hold(50*time.Millisecond, 0)...)
	events = append(events, p.hold(60*time.Millisecond, 1)...)
	events = append(events, p.hold(50*time.Millisecond, 0)...)
	events = append(events, p.hold(60*time.Millisecond, 1)...)
	events = append(events, p.hold(500*time.Millisecond, 0)...)

	assertTypes(t, events,
		button.EventPressed,
		button.EventReleased,
		button.EventShortPress,
		button.EventPressed,
		button.EventReleased,
		button.EventShortPress,
		button.EventDoubleTap,
	)
}

func TestLongPressFiresWhileHeld(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	p.hold(50*time.Millisecond, 0)
	events := p.hold(1500*time.Millisecond, 1)
	assertTypes(t, events, button.EventPressed, button.EventLongPress)
	if events[1].State != button.Pressed {
		t.Errorf("LONG_PRESS should fire while pressed, state %s", events[1].State)
	}

	// Release still joins a tap group.
	events = p.hold(500*time.Millisecond, 0)
	assertTypes(t, events, button.EventReleased, button.EventSingleTap)
}

func TestButtonConfigOverrides(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector([]ButtonConfig{{
		Name:            "door",
		PushDebounce:    50 * time.Millisecond,
		ReleaseDebounce: 10 * time.Millisecond,
		TapExpiry:       300 * time.Millisecond,
		LongPress:       200 * time.Millisecond,
	}}, now)
	p := newPoller(d, now)

	// 40ms press is shorter than the 50ms push debounce.
	if events := p.hold(40*time.Millisecond, 1); len(events) != 0 {
		t.Fatalf("expected press rejected by push debounce, got %v", eventTypes(events))
	}
	p.hold(100*time.Millisecond, 0)

	events := p.hold(300*time.Millisecond, 1)
	assertTypes(t, events, button.EventPressed, button.EventLongPress)

	events = p.hold(200*time.Millisecond, 0)
	assertTypes(t, events, button.EventReleased)
	events = p.hold(200*time.Millisecond, 0)
	assertTypes(t, events, button.EventSingleTap)
}

func TestButtonsAreIndependent(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector([]ButtonConfig{{Name: "a"}, {Name: "b"}}, now)
	p := newPoller(d, now)

	events := p.hold(100*time.Millisecond, 1, 0)
	assertTypes(t, events, button.EventPressed)
	if events[0].Button != "a" || events[0].ID != 0 {
		t.Errorf("expected event from button a/0, got %s/%d", events[0].Button, events[0].ID)
	}

	events = p.hold(100*time.Millisecond, 1, 1)
	assertTypes(t, events, button.EventPressed)
	if events[0].Button != "b" || events[0].ID != 1 {
		t.Errorf("expected event from button b/1, got %s/%d", events[0].Button, events[0].ID)
	}

	states := d.CurrentState()
	if states[0].State != button.Pressed || states[1].State != button.Pressed {
		t.Errorf("expected both pressed, got %s %s", states[0].State, states[1].State)
	}
}

func TestMissingSamplesLeaveButtonUnpolled(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector([]ButtonConfig{{Name: "a"}, {Name: "b"}}, now)
	p := newPoller(d, now)

	events := p.hold(100*time.Millisecond, 1)
	assertTypes(t, events, button.EventPressed)
	if events[0].Button != "a" {
		t.Errorf("expected event from a, got %s", events[0].Button)
	}

	// Extra samples are ignored.
	if events := p.hold(100*time.Millisecond, 1, 0, 1, 1); len(events) != 0 {
		t.Errorf("expected no events, got %v", eventTypes(events))
	}
}

func TestCurrentStateTracksLastEvent(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, now)
	p := newPoller(d, now)

	states := d.CurrentState()
	if states[0].LastEvent != nil {
		t.Error("expected no last event before any input")
	}
	if states[0].State != button.Released {
		t.Errorf("expected RELEASED, got %s", states[0].State)
	}

	p.hold(100*time.Millisecond, 1)
	p.hold(300*time.Millisecond, 0)

	states = d.CurrentState()
	if states[0].LastEvent == nil {
		t.Fatal("expected a last event")
	}
	if states[0].LastEvent.Type != button.EventSingleTap {
		t.Errorf("last event: got %s, want SINGLE_TAP", states[0].LastEvent.Type)
	}
	if states[0].Counts.Pressed != 1 || states[0].Counts.ShortPress != 1 || states[0].Counts.SingleTap != 1 {
		t.Errorf("unexpected counts: %+v", states[0].Counts)
	}

	// The snapshot must not alias detector state.
	states[0].LastEvent.Type = button.EventTripleTap
	if d.CurrentState()[0].LastEvent.Type != button.EventSingleTap {
		t.Error("CurrentState returned an aliased LastEvent")
	}
}

func TestEventCountsAccumulate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector([]ButtonConfig{{Name: "a"}, {Name: "b"}}, now)
	p := newPoller(d, now)

	p.hold(100*time.Millisecond, 1, 1)
	p.hold(300*time.Millisecond, 0, 0)

	c := d.EventCountsSnapshot()
	if c.Pressed != 2 || c.Released != 2 || c.ShortPress != 2 || c.SingleTap != 2 {
		t.Errorf("unexpected totals: %+v", c)
	}
	if c.Total() != 8 {
		t.Errorf("expected total 8, got %d", c.Total())
	}
}

// Heartbeat tests

func TestCheckHeartbeatDisabledWithZeroInterval(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, startTime)

	if hb := d.CheckHeartbeat(startTime.Add(15*time.Minute), 0); hb != nil {
		t.Error("should not return heartbeat when interval is 0 (disabled)")
	}
	if hb := d.CheckHeartbeat(startTime.Add(15*time.Minute), -1*time.Minute); hb != nil {
		t.Error("should not return heartbeat when interval is negative")
	}
}

func TestCheckHeartbeatBeforeInterval(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, startTime)

	if hb := d.CheckHeartbeat(startTime.Add(14*time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat before interval")
	}
}

func TestCheckHeartbeatUpdatesLastTime(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, startTime)

	t1 := startTime.Add(15 * time.Minute)
	hb1 := d.CheckHeartbeat(t1, 15*time.Minute)
	if hb1 == nil {
		t.Fatal("should return first heartbeat")
	}
	if !hb1.Timestamp.Equal(t1) {
		t.Errorf("expected timestamp %v, got %v", t1, hb1.Timestamp)
	}
	if hb1.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb1.Uptime)
	}

	if hb := d.CheckHeartbeat(t1.Add(time.Second), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat immediately after previous")
	}

	if hb := d.CheckHeartbeat(t1.Add(15*time.Minute), 15*time.Minute); hb == nil {
		t.Fatal("should return second heartbeat")
	}
}

func TestHeartbeatContainsEventCounts(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(hall, startTime)
	p := newPoller(d, startTime)

	p.hold(100*time.Millisecond, 1)
	p.hold(300*time.Millisecond, 0)

	hb := d.CheckHeartbeat(startTime.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("should return heartbeat")
	}
	if hb.Counts.Pressed != 1 {
		t.Errorf("expected Pressed=1, got %d", hb.Counts.Pressed)
	}
	if hb.Counts.SingleTap != 1 {
		t.Errorf("expected SingleTap=1, got %d", hb.Counts.SingleTap)
	}
	if hb.Counts.LongPress != 0 {
		t.Errorf("expected LongPress=0, got %d", hb.Counts.LongPress)
	}
}

package button

import "time"

// Classifier debounces one button and recognises gestures on top of the
// settled signal. It is not safe for concurrent use; each button owns one.
type Classifier struct {
	id      int
	clock   Clock
	handler Handler

	state         State
	lastRaw       State
	debounceStart uint32

	pushDebounce    uint32
	releaseDebounce uint32

	tapCount  int
	tapStart  uint32
	tapExpiry uint32

	pressCount int
	pressStart uint32
	longPress  uint32
}

// New creates a Classifier for the button identified by id. A nil clock uses
// MonotonicClock; a nil handler discards events.
func New(id int, clock Clock, handler Handler) *Classifier {
	if clock == nil {
		clock = MonotonicClock()
	}
	if handler == nil {
		handler = noopHandler
	}
	return &Classifier{
		id:              id,
		clock:           clock,
		handler:         handler,
		pushDebounce:    millis(DefaultDebounce),
		releaseDebounce: millis(DefaultDebounce),
		tapExpiry:       millis(DefaultTapExpiry),
		longPress:       millis(DefaultLongPress),
	}
}

// SetDebounce sets both the push and release debounce windows.
func (c *Classifier) SetDebounce(d time.Duration) {
	c.pushDebounce = millis(d)
	c.releaseDebounce = millis(d)
}

// SetPushDebounce sets how long the raw signal must hold before a press is accepted.
func (c *Classifier) SetPushDebounce(d time.Duration) { c.pushDebounce = millis(d) }

// SetReleaseDebounce sets how long the raw signal must hold before a release is accepted.
func (c *Classifier) SetReleaseDebounce(d time.Duration) { c.releaseDebounce = millis(d) }

// SetTapExpiry sets the quiet period after which a group of taps is dispatched.
func (c *Classifier) SetTapExpiry(d time.Duration) { c.tapExpiry = millis(d) }

// SetLongPress sets how long a press must be held to count as a long press.
func (c *Classifier) SetLongPress(d time.Duration) { c.longPress = millis(d) }

func (c *Classifier) ID() int         { return c.id }
func (c *Classifier) State() State    { return c.state }
func (c *Classifier) TapCount() int   { return c.tapCount }
func (c *Classifier) PressCount() int { return c.pressCount }

// Update feeds one raw sample through the debounce filter. Any non-zero
// sample means pressed. It reports whether the settled state changed and
// never invokes the handler.
func (c *Classifier) Update(sample int) bool {
	return c.debounce(sample, c.clock())
}

func (c *Classifier) debounce(sample int, now uint32) bool {
	raw := Released
	if sample != 0 {
		raw = Pressed
	}
	if raw != c.lastRaw {
		// Every raw edge, bounce included, restarts the stability timer.
		c.debounceStart = now
	}
	c.lastRaw = raw

	window := c.pushDebounce
	if c.state == Pressed {
		window = c.releaseDebounce
	}

	if now-c.debounceStart > window && raw != c.state {
		c.state = raw
		return true
	}
	return false
}

// UpdateWithGestures debounces sample like Update and then advances gesture
// recognition, invoking the handler at most once. It reports whether the
// settled state changed.
func (c *Classifier) UpdateWithGestures(sample int) bool {
	now := c.clock()
	changed := c.debounce(sample, now)

	switch {
	case !changed && c.tapCount == 0 && c.pressCount == 0:
		return false

	case !changed && c.tapCount > 0:
		if now-c.tapStart < c.tapExpiry {
			return false
		}
		switch c.tapCount {
		case 1:
			c.handler(c.id, EventSingleTap)
		case 2:
			c.handler(c.id, EventDoubleTap)
		case 3:
			c.handler(c.id, EventTripleTap)
		}
		c.tapCount = 0
		c.tapStart = 0
		return false

	case !changed && c.pressCount > 0:
		if now-c.pressStart < c.longPress {
			return false
		}
		// Clearing pressCount suppresses the short press at key-up.
		c.pressCount = 0
		c.pressStart = 0
		c.handler(c.id, EventLongPress)
		return false

	case changed && c.state == Pressed:
		c.tapStart = now
		c.pressStart = now
		c.pressCount++
		return true
	}

	// Key-up.
	if c.pressCount > 0 && now-c.pressStart < c.longPress {
		c.pressCount = 0
		c.pressStart = 0
		c.handler(c.id, EventShortPress)
	}

	// A release always joins the tap group, even after a long press has
	// already been dispatched for this hold.
	c.tapStart = now
	c.tapCount++
	return true
}

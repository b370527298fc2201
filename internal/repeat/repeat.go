// Package repeat implements hold-to-repeat with acceleration for keys such
// as undo, redo and backspace.
package repeat

import "time"

// Defaults for a held key.
const (
	DefaultInitial = 500 * time.Millisecond
	DefaultMin     = 50 * time.Millisecond
	DefaultFactor  = 0.95
)

// Repeater fires Action once when a key goes down and then repeatedly while
// it stays held, each interval Factor times the previous one but never
// shorter than Min. It keeps no timers; the caller drives it with the frame
// clock.
type Repeater struct {
	Initial time.Duration
	Min     time.Duration
	Factor  float64
	Action  func()

	held     bool
	next     time.Duration
	interval time.Duration
}

// New returns a Repeater with the default timing.
func New(action func()) *Repeater {
	return &Repeater{
		Initial: DefaultInitial,
		Min:     DefaultMin,
		Factor:  DefaultFactor,
		Action:  action,
	}
}

// Press fires the action and schedules the first repeat. Pressing while
// already held is ignored.
func (r *Repeater) Press(now time.Duration) {
	if r.held {
		return
	}
	r.held = true
	r.interval = r.Initial
	r.next = now + r.interval
	r.fire()
}

// Update fires the action when the next repeat is due and reports whether
// it fired. At most one firing happens per call, so a long frame does not
// burst.
func (r *Repeater) Update(now time.Duration) bool {
	if !r.held || now < r.next {
		return false
	}
	r.fire()
	r.interval = max(time.Duration(float64(r.interval)*r.Factor), r.Min)
	r.next = now + r.interval
	return true
}

// Release stops repeating and resets the interval.
func (r *Repeater) Release() {
	r.held = false
	r.interval = r.Initial
}

// Held reports whether the key is down.
func (r *Repeater) Held() bool {
	return r.held
}

// Interval returns the delay before the next repeat.
func (r *Repeater) Interval() time.Duration {
	if !r.held {
		return r.Initial
	}
	return r.interval
}

// Step drives the repeater from a key's down state in one call, the way a
// frame loop polls input.
func (r *Repeater) Step(down bool, now time.Duration) {
	switch {
	case down && !r.held:
		r.Press(now)
	case down:
		r.Update(now)
	case r.held:
		r.Release()
	}
}

func (r *Repeater) fire() {
	if r.Action != nil {
		r.Action()
	}
}

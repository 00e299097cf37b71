// Package cycle models the free-running cycle counter and the wrap-safe
// deadline arithmetic built on top of it (spec.md §4.2). A real firmware
// build reads a 32-bit hardware tick register; this host model drives the
// same 32-bit counter from a pluggable Source so tests can control
// wraparound precisely.
package cycle

import "time"

// Source returns elapsed nanoseconds since some fixed epoch. The default is
// time.Since against process start; tests substitute a fake source.
type Source func() int64

// Clock is a free-running 32-bit counter ticking at HzMHz cycles per
// microsecond (i.e. HzMHz MHz), matching the CPUCLK_MHz constant the
// original timeout.c multiplies by.
type Clock struct {
	hzMHz  uint32
	source Source
	start  int64
}

// NewClock creates a Clock ticking at hzMHz MHz, using the given time
// source. If source is nil, a wall-clock source anchored at creation time is
// used.
func NewClock(hzMHz uint32, source Source) *Clock {
	if hzMHz == 0 {
		hzMHz = 1
	}
	c := &Clock{hzMHz: hzMHz, source: source}
	if c.source == nil {
		start := time.Now()
		c.source = func() int64 { return int64(time.Since(start)) }
	}
	return c
}

// Read returns the current 32-bit free-running counter value. It wraps
// silently on overflow, exactly like the hardware register it models.
func (c *Clock) Read() uint32 {
	ns := c.source()
	cycles := (uint64(ns) * uint64(c.hzMHz)) / 1000
	return uint32(cycles)
}

// SetTimeout converts a relative microsecond delay into an absolute
// deadline value comparable against Read(). The caller must keep useconds
// small enough that the resulting cycle delta stays within half the counter
// period, or Expired's wraparound check becomes ambiguous.
func (c *Clock) SetTimeout(useconds uint32) uint32 {
	cycles := uint64(c.hzMHz) * uint64(useconds)
	if cycles>>31 != 0 {
		panic("cycle: timeout exceeds half the counter period")
	}
	return c.Read() + uint32(cycles)
}

// Expired reports whether the current counter value has passed the given
// deadline, using a sign-of-XOR wraparound check: if the top bits of now and
// deadline disagree, the deadline is assumed not to have wrapped past now
// yet unless now has also wrapped.
func (c *Clock) Expired(deadline uint32) bool {
	now := c.Read()
	return (now^deadline)>>31 == 0 && now >= deadline
}

// Delay busy-waits for at least useconds microseconds.
func (c *Clock) Delay(useconds uint32) {
	deadline := c.SetTimeout(useconds)
	for !c.Expired(deadline) {
	}
}

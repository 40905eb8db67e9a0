// Package simclock maps wall-clock time onto a simulated trading session.
//
// A Clock is constructed once at session start and never mutated afterwards,
// so every instrument thread may read it without synchronization.
package simclock

import "time"

// Clock converts wall-clock time into simulated session time using a fixed
// session start and speed multiplier.
type Clock struct {
	simStart  time.Time
	wallStart time.Time
	speed     int64
}

// New creates a Clock whose simulated time starts at simStart now, advancing
// speed times faster than the wall clock.
func New(simStart time.Time, speed int64) *Clock {
	return NewAt(simStart, time.Now(), speed)
}

// NewAt is like New but anchors the clock at an explicit wall-clock instant.
// Used by tests to make simulated time deterministic.
func NewAt(simStart, wallStart time.Time, speed int64) *Clock {
	if speed < 1 {
		speed = 1
	}
	return &Clock{
		simStart:  simStart,
		wallStart: wallStart,
		speed:     speed,
	}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	return c.At(time.Now())
}

// At returns the simulated time corresponding to the given wall-clock instant.
func (c *Clock) At(wall time.Time) time.Time {
	elapsed := wall.Sub(c.wallStart)
	return c.simStart.Add(elapsed * time.Duration(c.speed))
}

// SessionStart returns the simulated session start.
func (c *Clock) SessionStart() time.Time {
	return c.simStart
}

// Speed returns the session speed multiplier.
func (c *Clock) Speed() int64 {
	return c.speed
}

// SinceStartMillis returns the number of simulated milliseconds elapsed since
// the session start.
func (c *Clock) SinceStartMillis() int64 {
	return c.Now().Sub(c.simStart).Milliseconds()
}

// UntilEnd returns the wall-clock duration remaining before the simulated
// clock reaches end.
func (c *Clock) UntilEnd(end time.Time) time.Duration {
	simRemaining := end.Sub(c.Now())
	if simRemaining <= 0 {
		return 0
	}
	return simRemaining / time.Duration(c.speed)
}

package sparkfx

import (
	"time"
)

// Clock drives effect time. Tick advances Time and Dt once per frame; Elapsed is the
// effect time since Start, excluding paused spans.
type Clock struct {
	Start time.Time
	Time  time.Time
	Dt    time.Duration

	paused   bool
	pausedAt time.Duration
	now      func() time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Clock{Start: t, Time: t, now: now}
}

func (c *Clock) Tick() {
	now := c.now()
	c.Dt = now.Sub(c.Time)
	c.Time = now
}

func (c *Clock) Elapsed() time.Duration {
	if c.paused {
		return c.pausedAt
	}
	return c.now().Sub(c.Start)
}

// Seconds is Elapsed in the unit EmitterConfig.ParticleTime takes.
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}

func (c *Clock) Paused() bool {
	return c.paused
}

func (c *Clock) TogglePause() {
	if c.paused {
		c.Start = c.now().Add(-c.pausedAt)
		c.paused = false
		return
	}
	c.pausedAt = c.Elapsed()
	c.paused = true
}

// Restart sets elapsed time back to zero and keeps the pause state.
func (c *Clock) Restart() {
	c.Start = c.now()
	c.pausedAt = 0
}

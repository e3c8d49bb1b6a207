package realtime

// Countdown is a whole-second countdown advanced by explicit ticks.
// It holds no game state; owners compose it and react to Expired after each Tick.
type Countdown struct {
	total     int
	remaining int
}

// NewCountdown returns a countdown that starts full. Negative totals are treated as zero.
func NewCountdown(total int) Countdown {
	if total < 0 {
		total = 0
	}
	return Countdown{total: total, remaining: total}
}

// Tick decrements the remaining seconds by one, floored at zero, and returns the new value.
func (c *Countdown) Tick() int {
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Expired reports whether the countdown has reached zero.
func (c *Countdown) Expired() bool {
	return c.remaining == 0
}

// Reset restores the countdown to its full duration.
func (c *Countdown) Reset() {
	c.remaining = c.total
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Total returns the full duration in seconds.
func (c *Countdown) Total() int {
	return c.total
}

// Progress returns remaining/total in [0,1]. A zero-length countdown reports 0.
func (c *Countdown) Progress() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.remaining) / float64(c.total)
}

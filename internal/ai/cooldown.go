package ai

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown allows one generation per profile per interval
type Cooldown struct {
	mu       sync.Mutex
	every    time.Duration
	limiters map[string]*rate.Limiter
}

// NewCooldown creates a cooldown of the given interval; zero disables it
func NewCooldown(every time.Duration) *Cooldown {
	return &Cooldown{every: every, limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether profile may start a generation now, and if so
// starts its cooldown
func (c *Cooldown) Allow(profile string) bool {
	return c.AllowAt(profile, time.Now())
}

// AllowAt is Allow at a given time
func (c *Cooldown) AllowAt(profile string, now time.Time) bool {
	if c.every <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[profile]
	if !ok {
		l = rate.NewLimiter(rate.Every(c.every), 1)
		c.limiters[profile] = l
	}
	return l.AllowN(now, 1)
}

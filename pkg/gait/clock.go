package gait

import (
	"sync"
	"time"
)

// Clock is the time source maneuvers sleep on.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// RealClock sleeps for real.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// SimClock is a Clock whose Sleep advances simulated time instantly.
type SimClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

// NewSimClock returns a SimClock starting at a fixed instant.
func NewSimClock() *SimClock {
	return &SimClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.slept += d
	c.mu.Unlock()
}

// Slept returns the total simulated sleep so far.
func (c *SimClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

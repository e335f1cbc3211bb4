package theoraclip

import (
	"sync"
	"time"
)

// wallClock is the default PresentationClock: wall-clock time since Open,
// optionally paused, with SeekTo used to re-anchor it after a Clip.Seek
// call so Now() immediately reflects the new position rather than drifting
// back in from the old one.
type wallClock struct {
	mu       sync.Mutex
	started  time.Time
	pausedAt time.Time
	paused   bool
	offset   float64
}

func newWallClock() *wallClock {
	return &wallClock{started: time.Now()}
}

func (c *wallClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.offset + c.pausedAt.Sub(c.started).Seconds()
	}
	return c.offset + time.Since(c.started).Seconds()
}

func (c *wallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		c.paused = true
		c.pausedAt = time.Now()
	}
}

func (c *wallClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.offset += c.pausedAt.Sub(c.started).Seconds()
		c.started = time.Now()
		c.paused = false
	}
}

func (c *wallClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *wallClock) SeekTo(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t
	c.started = time.Now()
	c.pausedAt = c.started
}

package ports

import (
	"sync"
	"time"
)

// Clock fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

// SystemClock usa el reloj del sistema en UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock reloj controlado para tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock crea un reloj detenido en t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance mueve el reloj d hacia adelante.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Package throttle bounds and repairs file-system load: a FIFO counting
// semaphore caps how many operations run at once, and a retry engine
// re-issues operations that failed on descriptor exhaustion using
// exponential backoff with jitter. A Manager owns the live tunables and
// guarantees the capacity swap is atomic with respect to admission.
package throttle

import (
	"fmt"
	"time"
)

// Defaults for a freshly constructed Manager.
const (
	DefaultMaxConcurrency = 100
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = 100 * time.Millisecond
	DefaultMaxDelay       = 5 * time.Second
)

// Config holds the throttle tunables. MaxRetries counts additional
// attempts after the first failure; BaseDelay and MaxDelay bound the
// backoff window.
type Config struct {
	MaxConcurrency int
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: DefaultMaxConcurrency,
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
	}
}

// Validate checks the config invariants.
func (c Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("throttle: max concurrency must be positive, got %d", c.MaxConcurrency)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("throttle: max retries must be non-negative, got %d", c.MaxRetries)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("throttle: base delay must be positive, got %v", c.BaseDelay)
	}
	if c.MaxDelay <= 0 {
		return fmt.Errorf("throttle: max delay must be positive, got %v", c.MaxDelay)
	}
	if c.BaseDelay > c.MaxDelay {
		return fmt.Errorf("throttle: base delay %v exceeds max delay %v", c.BaseDelay, c.MaxDelay)
	}
	return nil
}

// Partial is a sparse config update. Nil fields leave the live value
// unchanged.
type Partial struct {
	MaxConcurrency *int
	MaxRetries     *int
	BaseDelay      *time.Duration
	MaxDelay       *time.Duration
}

// merge applies the set fields of p onto c and returns the result.
func (p Partial) merge(c Config) Config {
	if p.MaxConcurrency != nil {
		c.MaxConcurrency = *p.MaxConcurrency
	}
	if p.MaxRetries != nil {
		c.MaxRetries = *p.MaxRetries
	}
	if p.BaseDelay != nil {
		c.BaseDelay = *p.BaseDelay
	}
	if p.MaxDelay != nil {
		c.MaxDelay = *p.MaxDelay
	}
	return c
}

package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid retry config")

// Config controls backoff behavior. It is a value type and safe to share.
type Config struct {
	MaxRetries    int           // Retries after the first attempt (0 = single attempt)
	InitialDelay  time.Duration // Delay before retry 1
	MaxDelay      time.Duration // Cap applied before jitter
	BackoffFactor float64       // Growth per retry, > 1
	EnableJitter  bool          // Scale each delay by a uniform factor in [0.8, 1.2]
}

// DefaultConfig is the production configuration: 10 retries, 1s initial,
// 30s cap, factor 2, jitter on. Worst-case wait without jitter is 181s.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    10,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		EnableJitter:  true,
	}
}

// Validate checks the field constraints.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries %d < 0", ErrInvalidConfig, c.MaxRetries)
	}
	if c.InitialDelay <= 0 {
		return fmt.Errorf("%w: initial delay %s must be > 0", ErrInvalidConfig, c.InitialDelay)
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("%w: max delay %s < initial delay %s", ErrInvalidConfig, c.MaxDelay, c.InitialDelay)
	}
	if c.BackoffFactor <= 1 {
		return fmt.Errorf("%w: backoff factor %g must be > 1", ErrInvalidConfig, c.BackoffFactor)
	}
	return nil
}

// Delay returns the un-jittered delay before retry n (1-indexed):
// min(MaxDelay, InitialDelay * BackoffFactor^(n-1)).
func (c Config) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(n-1))
	if d > float64(c.MaxDelay) || math.IsInf(d, 1) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// WorstCaseWait sums the un-jittered delays of every retry.
func (c Config) WorstCaseWait() time.Duration {
	var total time.Duration
	for n := 1; n <= c.MaxRetries; n++ {
		total += c.Delay(n)
	}
	return total
}

package dispatch

import (
	"fmt"
	"time"
)

// Config controls how a batch is fanned out.
type Config struct {
	// MaxInFlight bounds concurrent calls per dispatch; 0 means one goroutine
	// per credential with no bound.
	MaxInFlight int

	// Rate paces call starts across all dispatches, in calls per second; 0
	// disables pacing.
	Rate float64

	// Burst is the number of calls that may start at once when pacing.
	Burst int
}

// DefaultConfig returns an unbounded, unpaced configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxInFlight: 0,
		Rate:        0,
		Burst:       1,
	}
}

// Validate checks the configuration for negative values.
func (c *Config) Validate() error {
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max in-flight must not be negative, got %d", c.MaxInFlight)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	}
	if c.Rate > 0 && c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate is set, got %d", c.Burst)
	}
	return nil
}

// WorstCase returns an upper bound on how long one dispatch of batchSize
// calls can take when every call runs into callTimeout.
//
// Without an in-flight limit all calls run at once, so the bound is a single
// call timeout. With a limit the batch runs in ceil(batchSize/MaxInFlight)
// waves. Pacing adds the time the limiter needs to release the calls beyond
// the initial burst. The limiter is shared by all dispatches, so concurrent
// requests can still exceed this bound; it describes one request in
// isolation.
func (c *Config) WorstCase(batchSize int, callTimeout time.Duration) time.Duration {
	if batchSize <= 0 {
		return 0
	}

	waves := 1
	if c.MaxInFlight > 0 {
		waves = (batchSize + c.MaxInFlight - 1) / c.MaxInFlight
	}
	bound := time.Duration(waves) * callTimeout

	if c.Rate > 0 && batchSize > c.Burst {
		bound += time.Duration(float64(time.Second) * float64(batchSize-c.Burst) / c.Rate)
	}
	return bound
}

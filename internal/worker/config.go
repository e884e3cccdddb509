// Package worker provides background job processing for TripSentry.
package worker

import (
	"time"
)

// SweepConfig holds configuration for the assessment sweep job.
type SweepConfig struct {
	// Concurrency is the number of tourists evaluated concurrently.
	// Default: 3
	Concurrency int

	// Timeout bounds the evaluation of a single tourist.
	// Default: 30 seconds
	Timeout time.Duration

	// Retention is how long location samples are kept before the prune job
	// removes them. Default: 30 days.
	Retention time.Duration
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
		Retention:   30 * 24 * time.Hour,
	}
}

// withDefaults fills in zero-value fields.
func (c SweepConfig) withDefaults() SweepConfig {
	defaults := DefaultSweepConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = defaults.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.Retention <= 0 {
		c.Retention = defaults.Retention
	}
	return c
}

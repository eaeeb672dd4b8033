// internal/engine/delay.go
package engine

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delayer suspends a simulated analysis to mimic agent latency.
type Delayer interface {
	Delay(ctx context.Context) error
}

const (
	DefaultMinDelay = 1500 * time.Millisecond
	DefaultMaxDelay = 2500 * time.Millisecond
)

// UniformDelayer waits for a duration drawn uniformly from [Min, Max).
type UniformDelayer struct {
	Min time.Duration
	Max time.Duration

	sample func(n int64) int64
}

func NewUniformDelayer(minDelay, maxDelay time.Duration) *UniformDelayer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &UniformDelayer{Min: minDelay, Max: maxDelay, sample: rand.Int64N}
}

// Next draws the next delay.
func (d *UniformDelayer) Next() time.Duration {
	span := int64(d.Max - d.Min)
	if span <= 0 {
		return d.Min
	}
	sample := d.sample
	if sample == nil {
		sample = rand.Int64N
	}
	return d.Min + time.Duration(sample(span))
}

// Delay returns early with the context's error when ctx ends first.
func (d *UniformDelayer) Delay(ctx context.Context) error {
	wait := d.Next()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay returns immediately.
type NoDelay struct{}

func (NoDelay) Delay(ctx context.Context) error {
	return ctx.Err()
}

package app

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/five82/coregym/internal/fetch"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns the wait after the given number of consecutive
// failures: interval doubled per failure, capped at maxBackoff or at
// interval when that is longer.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	b := newBackoff(interval)
	wait := b.NextBackOff()
	for i := 0; i < failures; i++ {
		wait = b.NextBackOff()
	}
	return wait
}

func newBackoff(interval time.Duration) *backoff.ExponentialBackOff {
	ceiling := maxBackoff
	if interval > ceiling {
		ceiling = interval
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     interval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         ceiling,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

// StartPoller launches a background goroutine that refetches client at a
// fixed cadence, backing off while requests fail. after, when non-nil,
// receives the state once each attempt settles. The returned channel is
// closed when ctx ends. StartPoller returns immediately.
func StartPoller[T any](ctx context.Context, client *fetch.Client[T], interval time.Duration, logger zerolog.Logger, after func(fetch.State[T])) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)

		failures := 0
		for {
			if _, err := client.RefetchWait(ctx); err != nil {
				failures++
				logger.Warn().Err(err).Int("failures", failures).Msg("workouts poll failed")
			} else {
				failures = 0
			}
			if ctx.Err() != nil {
				return
			}
			if after != nil {
				after(client.Snapshot())
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return done
}

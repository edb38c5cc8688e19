package lifecycle

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy controls how Start waits between failed connection attempts.
//
// A Multiplier of 1 or less gives a fixed Interval. MaxAttempts of 0 means
// no limit; otherwise it counts every attempt including the first.
type Policy struct {
	Interval    time.Duration
	Multiplier  float64
	MaxInterval time.Duration
	MaxAttempts int
}

// DefaultPolicy retries every two seconds, forever.
func DefaultPolicy() Policy {
	return Policy{Interval: 2 * time.Second, Multiplier: 1}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPolicy().Interval
	}

	var b backoff.BackOff
	if p.Multiplier <= 1 {
		b = backoff.NewConstantBackOff(interval)
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = interval
		eb.Multiplier = p.Multiplier
		eb.RandomizationFactor = 0
		eb.MaxElapsedTime = 0
		if p.MaxInterval > 0 {
			eb.MaxInterval = p.MaxInterval
		}
		eb.Reset()
		b = eb
	}
	switch {
	case p.MaxAttempts == 1:
		b = &backoff.StopBackOff{}
	case p.MaxAttempts > 1:
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

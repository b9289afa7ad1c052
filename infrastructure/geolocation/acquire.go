package geolocation

import (
	"context"
	"errors"
	"fmt"

	"mruput.io/infrastructure/logger"
)

// Acquirer requests a fresh high-accuracy fix, retrying once on a timeout or
// a transient signal loss. A denied permission is returned at once.
type Acquirer struct {
	Source  FixSource
	Options FixOptions
	Retries int
}

func NewAcquirer(source FixSource, opts FixOptions, retries int) *Acquirer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultAcquisitionTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if retries > MaxRetries {
		retries = MaxRetries
	}
	return &Acquirer{Source: source, Options: opts, Retries: retries}
}

func DefaultFixOptions() FixOptions {
	return FixOptions{HighAccuracy: true, Timeout: DefaultAcquisitionTimeout, MaximumAge: 0}
}

func (a *Acquirer) Acquire(ctx context.Context) (*GeoFix, error) {
	var lastErr error
	retries := min(a.Retries, MaxRetries)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Info("retrying location acquisition", logger.LoggerOptions{
				Key:  "cause",
				Data: lastErr.Error(),
			})
		}
		fix, err := a.once(ctx)
		if err == nil {
			return fix, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !Retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (a *Acquirer) once(ctx context.Context) (*GeoFix, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.Options.Timeout)
	defer cancel()

	fix, err := a.Source.CurrentFix(attemptCtx, a.Options)
	if err == nil && fix == nil {
		err = ErrSignalUnavailable
	}
	if err == nil {
		return fix, nil
	}
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrTimeout), errors.Is(err, ErrSignalUnavailable):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, ErrTimeout
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: %v", ErrSignalUnavailable, err)
}

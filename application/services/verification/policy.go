package verification

import (
	"errors"
	"fmt"
	"time"

	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/geolocation"
)

// Policy holds every threshold, window and retry count of an attempt.
type Policy struct {
	MatchThreshold     float64
	RequiredBlinks     int
	ChallengeWindow    time.Duration
	MaxChallengeFrames int
	MaxCaptureAttempts int
	StillTimeout       time.Duration
	Liveness           liveness.Config

	LocationTimeout     time.Duration
	LocationRetries     int
	MinAccuracyMeters   float64
	DefaultRadiusMeters float64

	RecordTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MatchThreshold:      types.DefaultMatchThreshold,
		RequiredBlinks:      1,
		ChallengeWindow:     15 * time.Second,
		MaxChallengeFrames:  0,
		MaxCaptureAttempts:  3,
		StillTimeout:        30 * time.Second,
		Liveness:            liveness.DefaultConfig(),
		LocationTimeout:     geolocation.DefaultAcquisitionTimeout,
		LocationRetries:     1,
		MinAccuracyMeters:   0,
		DefaultRadiusMeters: geolocation.DefaultRadiusMeters,
		RecordTimeout:       10 * time.Second,
	}
}

func (p Policy) Validate() error {
	var errs []error
	if p.MatchThreshold <= 0 || p.MatchThreshold > 2 {
		errs = append(errs, fmt.Errorf("match_threshold must be in (0, 2], got %v", p.MatchThreshold))
	}
	if p.RequiredBlinks < 1 {
		errs = append(errs, fmt.Errorf("required_blinks must be at least 1, got %d", p.RequiredBlinks))
	}
	if p.ChallengeWindow <= 0 && p.MaxChallengeFrames <= 0 {
		errs = append(errs, errors.New("challenge needs a challenge_window or max_challenge_frames bound"))
	}
	if p.MaxCaptureAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_capture_attempts must be at least 1, got %d", p.MaxCaptureAttempts))
	}
	if p.StillTimeout <= 0 {
		errs = append(errs, errors.New("still_timeout must be positive"))
	}
	if p.LocationTimeout <= 0 {
		errs = append(errs, errors.New("location_timeout must be positive"))
	}
	if p.LocationRetries < 0 || p.LocationRetries > geolocation.MaxRetries {
		errs = append(errs, fmt.Errorf("location_retries must be between 0 and %d, got %d", geolocation.MaxRetries, p.LocationRetries))
	}
	if p.MinAccuracyMeters < 0 || p.DefaultRadiusMeters < 0 {
		errs = append(errs, errors.New("distances cannot be negative"))
	}
	switch p.Liveness.Kind {
	case liveness.KindEAR, liveness.KindBlendshape:
	default:
		errs = append(errs, fmt.Errorf("unknown liveness kind %q", p.Liveness.Kind))
	}
	return errors.Join(errs...)
}

func (p Policy) challenge() liveness.Challenge {
	return liveness.Challenge{
		RequiredBlinks: p.RequiredBlinks,
		Window:         p.ChallengeWindow,
		MaxFrames:      p.MaxChallengeFrames,
	}
}

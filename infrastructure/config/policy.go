package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"mruput.io/application/services/verification"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/logger"
)

// policyFile mirrors verification.Policy in a TOML friendly shape. Durations
// are whole or fractional seconds.
type policyFile struct {
	MatchThreshold      *float64 `toml:"match_threshold"`
	RequiredBlinks      *int     `toml:"required_blinks"`
	ChallengeWindowSecs *float64 `toml:"challenge_window_seconds"`
	MaxChallengeFrames  *int     `toml:"max_challenge_frames"`
	MaxCaptureAttempts  *int     `toml:"max_capture_attempts"`
	StillTimeoutSecs    *float64 `toml:"still_timeout_seconds"`

	Liveness *livenessFile `toml:"liveness"`

	LocationTimeoutSecs *float64 `toml:"location_timeout_seconds"`
	LocationRetries     *int     `toml:"location_retries"`
	MinAccuracyMeters   *float64 `toml:"min_accuracy_meters"`
	DefaultRadiusMeters *float64 `toml:"default_radius_meters"`

	RecordTimeoutSecs *float64 `toml:"record_timeout_seconds"`
}

type livenessFile struct {
	Kind                *string  `toml:"kind"`
	EARThreshold        *float64 `toml:"ear_threshold"`
	MinClosedFrames     *int     `toml:"min_closed_frames"`
	BlendshapeThreshold *float64 `toml:"blendshape_threshold"`
	CooldownFrames      *int     `toml:"cooldown_frames"`
}

// LoadPolicy builds the verification policy from defaults, then the TOML file
// named by POLICY_FILE, then POLICY_* environment variables.
func LoadPolicy() (verification.Policy, error) {
	policy := verification.DefaultPolicy()
	if path := os.Getenv("POLICY_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return policy, fmt.Errorf("reading policy file: %w", err)
		}
		if err := ApplyPolicyFile(&policy, raw); err != nil {
			return policy, err
		}
		logger.Info("verification policy loaded from file", logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
	}
	if err := ApplyPolicyEnv(&policy, os.LookupEnv); err != nil {
		return policy, err
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid verification policy: %w", err)
	}
	return policy, nil
}

// ApplyPolicyFile overlays the keys present in a TOML document.
func ApplyPolicyFile(policy *verification.Policy, raw []byte) error {
	var file policyFile
	decoder := toml.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return fmt.Errorf("parsing policy file: %w", err)
	}
	setFloat(&policy.MatchThreshold, file.MatchThreshold)
	setInt(&policy.RequiredBlinks, file.RequiredBlinks)
	setSeconds(&policy.ChallengeWindow, file.ChallengeWindowSecs)
	setInt(&policy.MaxChallengeFrames, file.MaxChallengeFrames)
	setInt(&policy.MaxCaptureAttempts, file.MaxCaptureAttempts)
	setSeconds(&policy.StillTimeout, file.StillTimeoutSecs)
	setSeconds(&policy.LocationTimeout, file.LocationTimeoutSecs)
	setInt(&policy.LocationRetries, file.LocationRetries)
	setFloat(&policy.MinAccuracyMeters, file.MinAccuracyMeters)
	setFloat(&policy.DefaultRadiusMeters, file.DefaultRadiusMeters)
	setSeconds(&policy.RecordTimeout, file.RecordTimeoutSecs)
	if l := file.Liveness; l != nil {
		if l.Kind != nil {
			policy.Liveness.Kind = liveness.Kind(*l.Kind)
		}
		setFloat(&policy.Liveness.EARThreshold, l.EARThreshold)
		setInt(&policy.Liveness.MinClosedFrames, l.MinClosedFrames)
		setFloat(&policy.Liveness.BlendshapeThreshold, l.BlendshapeThreshold)
		setInt(&policy.Liveness.CooldownFrames, l.CooldownFrames)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// ApplyPolicyEnv overlays POLICY_* variables. Durations accept Go duration
// strings ("15s") or bare seconds.
func ApplyPolicyEnv(policy *verification.Policy, lookup lookupFunc) error {
	e := envReader{lookup: lookup}
	e.float("POLICY_MATCH_THRESHOLD", &policy.MatchThreshold)
	e.int("POLICY_REQUIRED_BLINKS", &policy.RequiredBlinks)
	e.duration("POLICY_CHALLENGE_WINDOW", &policy.ChallengeWindow)
	e.int("POLICY_MAX_CHALLENGE_FRAMES", &policy.MaxChallengeFrames)
	e.int("POLICY_MAX_CAPTURE_ATTEMPTS", &policy.MaxCaptureAttempts)
	e.duration("POLICY_STILL_TIMEOUT", &policy.StillTimeout)
	e.duration("POLICY_LOCATION_TIMEOUT", &policy.LocationTimeout)
	e.int("POLICY_LOCATION_RETRIES", &policy.LocationRetries)
	e.float("POLICY_MIN_ACCURACY_METERS", &policy.MinAccuracyMeters)
	e.float("POLICY_DEFAULT_RADIUS_METERS", &policy.DefaultRadiusMeters)
	e.duration("POLICY_RECORD_TIMEOUT", &policy.RecordTimeout)
	if v, ok := lookup("POLICY_LIVENESS_KIND"); ok && v != "" {
		policy.Liveness.Kind = liveness.Kind(v)
	}
	e.float("POLICY_EAR_THRESHOLD", &policy.Liveness.EARThreshold)
	e.int("POLICY_MIN_CLOSED_FRAMES", &policy.Liveness.MinClosedFrames)
	e.float("POLICY_BLENDSHAPE_THRESHOLD", &policy.Liveness.BlendshapeThreshold)
	e.int("POLICY_COOLDOWN_FRAMES", &policy.Liveness.CooldownFrames)
	return e.err
}

type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	return v, ok && v != ""
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.value(key); ok {
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			e.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = parsed
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.value(key); ok {
		parsed, err := cast.ToIntE(v)
		if err != nil {
			e.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = parsed
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.value(key); ok {
		if seconds, err := cast.ToFloat64E(v); err == nil {
			*dst = time.Duration(seconds * float64(time.Second))
			return
		}
		parsed, err := cast.ToDurationE(v)
		if err != nil {
			e.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = parsed
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setSeconds(dst *time.Duration, v *float64) {
	if v != nil {
		*dst = time.Duration(*v * float64(time.Second))
	}
}

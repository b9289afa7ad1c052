package geolocation

import (
	"context"
	"errors"
	"time"
)

const (
	EarthRadiusKm = 6371.0
	// DefaultRadiusMeters applies to offices stored without a radius.
	DefaultRadiusMeters = 50.0
	// DefaultAcquisitionTimeout bounds a single fix request.
	DefaultAcquisitionTimeout = 20 * time.Second
	// MaxRetries caps automatic retries of a failed fix request.
	MaxRetries = 1
)

type GeoFix struct {
	Latitude       float64   `json:"latitude" bson:"latitude"`
	Longitude      float64   `json:"longitude" bson:"longitude"`
	AccuracyMeters float64   `json:"accuracyMeters" bson:"accuracyMeters"`
	IsMocked       bool      `json:"isMocked" bson:"isMocked"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
}

type Office struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
	IsActive     bool    `json:"isActive"`
}

type WorkMode string

const (
	WorkFromOffice WorkMode = "wfo"
	WorkFromHome   WorkMode = "wfh"
	WorkInField    WorkMode = "field"
)

func (m WorkMode) Valid() bool {
	switch m {
	case WorkFromOffice, WorkFromHome, WorkInField:
		return true
	}
	return false
}

// RequiresGeofence reports whether attendance in this mode must happen inside
// an office radius. Remote modes only need a trustworthy fix.
func (m WorkMode) RequiresGeofence() bool {
	return m == WorkFromOffice || m == ""
}

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMocked          Reason = "mocked"
	ReasonOutsideGeofence Reason = "outside_geofence"
	ReasonInaccurate      Reason = "inaccurate"
	ReasonOfficeInactive  Reason = "office_inactive"
	ReasonNoOffice        Reason = "no_office"
)

type LocationVerdict struct {
	WithinGeofence bool     `json:"withinGeofence"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
	RadiusMeters   float64  `json:"radiusMeters"`
	Trusted        bool     `json:"trusted"`
	AccuracyOK     bool     `json:"accuracyOk"`
	Reason         Reason   `json:"reason,omitempty"`
}

func (v LocationVerdict) Passed() bool {
	return v.Reason == ReasonNone
}

type FixOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// FixSource is the device positioning capability.
type FixSource interface {
	CurrentFix(ctx context.Context, opts FixOptions) (*GeoFix, error)
}

var (
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrTimeout           = errors.New("location request timed out")
	ErrSignalUnavailable = errors.New("location signal unavailable")
)

// Retryable reports whether a failed fix request may be attempted again.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrSignalUnavailable)
}

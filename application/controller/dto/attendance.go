package dto

import (
	"time"

	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/geolocation"
)

type StartAttemptDTO struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	OfficeID  string `json:"officeId" validate:"max=64"`
	WorkMode  string `json:"workMode" validate:"required,workmode"`
}

type PushFramesDTO struct {
	Frames []liveness.Frame `json:"frames" validate:"required,min=1,max=120"`
}

type PushStillDTO struct {
	Image string `json:"image" validate:"required,still_image"`
}

// Location acquisition errors a client can report instead of a fix.
const (
	LocationErrorPermissionDenied = "permission_denied"
	LocationErrorTimeout          = "timeout"
	LocationErrorUnavailable      = "unavailable"
)

// PushLocationDTO carries either a fix or the reason none could be taken.
type PushLocationDTO struct {
	Latitude       *float64   `json:"latitude" validate:"required_without=Error,omitempty,min=-90,max=90"`
	Longitude      *float64   `json:"longitude" validate:"required_without=Error,omitempty,min=-180,max=180"`
	AccuracyMeters float64    `json:"accuracyMeters" validate:"gte=0"`
	IsMocked       bool       `json:"isMocked"`
	Timestamp      *time.Time `json:"timestamp"`
	Error          string     `json:"error" validate:"omitempty,oneof=permission_denied timeout unavailable"`
}

func (d *PushLocationDTO) ToReport(now time.Time) geolocation.FixReport {
	switch d.Error {
	case LocationErrorPermissionDenied:
		return geolocation.FixReport{Err: geolocation.ErrPermissionDenied}
	case LocationErrorTimeout:
		return geolocation.FixReport{Err: geolocation.ErrTimeout}
	case LocationErrorUnavailable:
		return geolocation.FixReport{Err: geolocation.ErrSignalUnavailable}
	}
	if d.Latitude == nil || d.Longitude == nil {
		return geolocation.FixReport{Err: geolocation.ErrSignalUnavailable}
	}
	fix := &geolocation.GeoFix{
		Latitude:       *d.Latitude,
		Longitude:      *d.Longitude,
		AccuracyMeters: d.AccuracyMeters,
		IsMocked:       d.IsMocked,
		Timestamp:      now,
	}
	if d.Timestamp != nil {
		fix.Timestamp = *d.Timestamp
	}
	return geolocation.FixReport{Fix: fix}
}

// VerifyRecordedAttemptDTO submits a whole attempt at once: the challenge
// frames, the stills in capture order and the location reports in order.
type VerifyRecordedAttemptDTO struct {
	OfficeID  string            `json:"officeId" validate:"max=64"`
	WorkMode  string            `json:"workMode" validate:"required,workmode"`
	Frames    []liveness.Frame  `json:"frames" validate:"required,min=1,max=600"`
	Stills    []string          `json:"stills" validate:"required,min=1,max=5,dive,still_image"`
	Locations []PushLocationDTO `json:"locations" validate:"required,min=1,max=5,dive"`
}

type EnrollSelfDTO struct {
	Image string `json:"image" validate:"required,still_image"`
}

type AttendanceHistoryQuery struct {
	Limit  int64   `form:"limit" validate:"omitempty,min=1,max=100"`
	LastID *string `form:"lastId" validate:"omitempty,ulid"`
}

package verification

import (
	"context"

	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
)

// CaptureSource is the camera side of an attempt. Frames delivers the blink
// challenge stream; a closed channel means no more frames will come. Still
// returns one image for identity matching.
type CaptureSource interface {
	Open(ctx context.Context) error
	Frames() <-chan liveness.Frame
	Still(ctx context.Context) ([]byte, error)
	Close() error
}

// EnrollmentStore returns ErrEnrollmentNotFound when the user has no face on file.
type EnrollmentStore interface {
	GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error)
}

// RecordSink persists a decided attempt.
type RecordSink interface {
	Record(ctx context.Context, record *Record) error
}

// AttemptMetadata is request context kept with the record for audit.
type AttemptMetadata struct {
	SessionID string `json:"sessionId,omitempty"`
	DeviceID  string `json:"deviceId,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Language  string `json:"language,omitempty"`
}

type Record struct {
	Decision *Decision       `json:"decision"`
	Metadata AttemptMetadata `json:"metadata"`
	// Still is the image the identity check used, if any.
	Still []byte `json:"-"`
}

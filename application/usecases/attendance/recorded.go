package attendance_usecases

import (
	"context"

	"mruput.io/application/services/verification"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/capture"
	"mruput.io/infrastructure/geolocation"
)

// RecordedInput is an attempt captured on the device and submitted whole.
type RecordedInput struct {
	UserID    string
	SessionID string
	OfficeID  string
	WorkMode  geolocation.WorkMode
	Frames    []liveness.Frame
	Stills    [][]byte
	Locations []geolocation.FixReport
	Metadata  verification.AttemptMetadata
}

// EvaluateRecorded runs a recorded attempt to a decision within the caller's
// request. It shares the one-attempt-per-session rule with pushed attempts.
func (s *Service) EvaluateRecorded(ctx context.Context, input RecordedInput) (*verification.Decision, error) {
	if s.Limiter != nil && !s.Limiter.Allow(ctx, input.UserID) {
		return nil, ErrTooManyAttempts
	}
	office, err := s.findOffice(ctx, input.OfficeID)
	if err != nil {
		return nil, err
	}
	if input.SessionID == "" {
		input.SessionID = "recorded"
	}
	input.Metadata.SessionID = input.SessionID
	attempt := &verification.Attempt{
		ID:       utils.GenerateUULDString(),
		UserID:   input.UserID,
		Office:   office,
		WorkMode: input.WorkMode,
		Capture:  capture.NewReplay(input.Frames, input.Stills),
		Location: &geolocation.SequenceFixSource{Reports: input.Locations},
		Metadata: input.Metadata,
	}
	runCtx, release := s.Sessions.Begin(ctx, sessionKey(input.UserID, input.SessionID))
	defer release()
	return s.Orchestrator.Run(runCtx, attempt)
}

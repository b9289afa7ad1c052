package attendance_usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"mruput.io/application/services/verification"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/capture"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/logger"
)

var (
	ErrAttemptNotFound = errors.New("attendance attempt not found")
	ErrAttemptFinished = errors.New("attendance attempt already finished")
	ErrOfficeNotFound  = errors.New("office not found")
	ErrTooManyAttempts = errors.New("too many attendance attempts, try again shortly")
)

// OfficeFinder returns nil, nil when the office does not exist.
type OfficeFinder interface {
	FindOffice(ctx context.Context, officeID string) (*geolocation.Office, error)
}

// AttemptLimiter bounds how often one employee may start attempts.
type AttemptLimiter interface {
	Allow(ctx context.Context, userID string) bool
}

type StartInput struct {
	UserID    string
	SessionID string
	OfficeID  string
	WorkMode  geolocation.WorkMode
	Metadata  verification.AttemptMetadata
}

// Service keeps the attempts of this process that are fed by client pushes.
// Finished attempts stay readable for Retention.
type Service struct {
	Orchestrator *verification.Orchestrator
	Sessions     *verification.Sessions
	Offices      OfficeFinder
	Limiter      AttemptLimiter
	Retention    time.Duration

	mu       sync.Mutex
	attempts map[string]*LiveAttempt
}

func NewService(orchestrator *verification.Orchestrator, offices OfficeFinder, limiter AttemptLimiter, retention time.Duration) *Service {
	return &Service{
		Orchestrator: orchestrator,
		Sessions:     verification.NewSessions(),
		Offices:      offices,
		Limiter:      limiter,
		Retention:    retention,
		attempts:     map[string]*LiveAttempt{},
	}
}

// LiveAttempt is an attempt whose camera and location are pushed over HTTP.
type LiveAttempt struct {
	ID        string
	UserID    string
	SessionID string
	StartedAt time.Time

	capture *capture.Push
	fixes   *geolocation.PushedFixSource
	cancel  context.CancelFunc
	done    chan struct{}

	mu         sync.Mutex
	progress   verification.Progress
	decision   *verification.Decision
	err        error
	finishedAt time.Time
}

type AttemptStatus struct {
	ID            string                 `json:"id"`
	SessionID     string                 `json:"sessionId"`
	State         verification.State     `json:"state"`
	Phase         liveness.Phase         `json:"phase"`
	BlinkCount    int                    `json:"blinkCount"`
	EyesClosed    bool                   `json:"eyesClosed"`
	FramesSeen    int                    `json:"framesSeen"`
	FramesDropped int64                  `json:"framesDropped"`
	Decision      *verification.Decision `json:"decision,omitempty"`
	Recorded      bool                   `json:"recorded"`
	StartedAt     time.Time              `json:"startedAt"`
}

// observe tracks progress while Run executes. The decided and canceled states
// are set by finish, together with the result, so Status never reports a
// final state without it.
func (a *LiveAttempt) observe(p verification.Progress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.finishedAt.IsZero() {
		return
	}
	if p.State == verification.StateDecided || p.State == verification.StateCanceled {
		a.progress.Liveness = p.Liveness
		return
	}
	a.progress = p
}

func (a *LiveAttempt) finish(decision *verification.Decision, err error, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decision = decision
	a.err = err
	a.finishedAt = at
	if decision != nil {
		a.progress.State = verification.StateDecided
	} else {
		a.progress.State = verification.StateCanceled
	}
}

func (a *LiveAttempt) Finished() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the attempt has a decision or was canceled.
func (a *LiveAttempt) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result is the decision and the error Run returned. Both are nil while the
// attempt runs.
func (a *LiveAttempt) Result() (*verification.Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decision, a.err
}

func (a *LiveAttempt) Status() AttemptStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	var recordErr *verification.RecordError
	return AttemptStatus{
		ID:            a.ID,
		SessionID:     a.SessionID,
		State:         a.progress.State,
		Phase:         a.progress.Liveness.Phase,
		BlinkCount:    a.progress.Liveness.BlinkCount,
		EyesClosed:    a.progress.Liveness.EyesClosed,
		FramesSeen:    a.progress.Liveness.FramesSeen,
		FramesDropped: a.capture.Dropped(),
		Decision:      a.decision,
		Recorded:      a.decision != nil && !errors.As(a.err, &recordErr),
		StartedAt:     a.StartedAt,
	}
}

func sessionKey(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// StartAttempt begins a pushed attempt. An attempt already running in the
// same session is canceled first and StartAttempt waits for it to stop.
func (s *Service) StartAttempt(ctx context.Context, input StartInput) (*LiveAttempt, error) {
	if s.Limiter != nil && !s.Limiter.Allow(ctx, input.UserID) {
		return nil, ErrTooManyAttempts
	}
	office, err := s.findOffice(ctx, input.OfficeID)
	if err != nil {
		return nil, err
	}
	s.prune(time.Now())

	live := &LiveAttempt{
		ID:        utils.GenerateUULDString(),
		UserID:    input.UserID,
		SessionID: input.SessionID,
		StartedAt: time.Now(),
		capture:   capture.NewPush(),
		fixes:     geolocation.NewPushedFixSource(),
		done:      make(chan struct{}),
		progress:  verification.Progress{State: verification.StateIdle},
	}
	input.Metadata.SessionID = input.SessionID
	attempt := &verification.Attempt{
		ID:       live.ID,
		UserID:   input.UserID,
		Office:   office,
		WorkMode: input.WorkMode,
		Capture:  live.capture,
		Location: live.fixes,
		Metadata: input.Metadata,
		Observe:  live.observe,
	}

	sessionCtx, release := s.Sessions.Begin(context.Background(), sessionKey(input.UserID, input.SessionID))
	runCtx, cancel := context.WithCancel(sessionCtx)
	live.cancel = cancel

	s.mu.Lock()
	s.attempts[live.ID] = live
	s.mu.Unlock()

	logger.Info("attendance attempt started", logger.LoggerOptions{
		Key:  "attemptID",
		Data: live.ID,
	}, logger.LoggerOptions{
		Key:  "userID",
		Data: input.UserID,
	}, logger.LoggerOptions{
		Key:  "workMode",
		Data: input.WorkMode,
	})
	go s.run(runCtx, release, live, attempt)
	return live, nil
}

func (s *Service) run(ctx context.Context, release func(), live *LiveAttempt, attempt *verification.Attempt) {
	defer release()
	defer close(live.done)
	defer live.cancel()
	decision, err := s.Orchestrator.Run(ctx, attempt)
	if err != nil && decision == nil && !errors.Is(err, verification.ErrAttemptCanceled) {
		logger.Error("attendance attempt failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "attemptID",
			Data: live.ID,
		})
	}
	live.finish(decision, err, time.Now())
}

func (s *Service) findOffice(ctx context.Context, officeID string) (*geolocation.Office, error) {
	if officeID == "" || s.Offices == nil {
		return nil, nil
	}
	office, err := s.Offices.FindOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, ErrOfficeNotFound
	}
	return office, nil
}

// GetAttempt returns the attempt only to the employee who started it.
func (s *Service) GetAttempt(attemptID string, userID string) (*LiveAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.attempts[attemptID]
	if !ok || live.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	return live, nil
}

// PushFrames returns how many frames were queued. Frames that do not fit the
// buffer are dropped and reported through AttemptStatus.FramesDropped.
func (s *Service) PushFrames(attemptID string, userID string, frames []liveness.Frame) (int, error) {
	live, err := s.GetAttempt(attemptID, userID)
	if err != nil {
		return 0, err
	}
	if live.Finished() {
		return 0, ErrAttemptFinished
	}
	accepted, err := live.capture.PushFrames(frames...)
	if errors.Is(err, capture.ErrClosed) {
		return accepted, ErrAttemptFinished
	}
	return accepted, err
}

func (s *Service) PushStill(attemptID string, userID string, image []byte) error {
	live, err := s.GetAttempt(attemptID, userID)
	if err != nil {
		return err
	}
	if live.Finished() {
		return ErrAttemptFinished
	}
	if err := live.capture.PushStill(image); err != nil {
		if errors.Is(err, capture.ErrClosed) {
			return ErrAttemptFinished
		}
		return err
	}
	return nil
}

func (s *Service) PushLocation(attemptID string, userID string, report geolocation.FixReport) error {
	live, err := s.GetAttempt(attemptID, userID)
	if err != nil {
		return err
	}
	if live.Finished() {
		return ErrAttemptFinished
	}
	live.fixes.Push(report)
	return nil
}

// CancelAttempt stops a running attempt and waits for it to release its
// resources. Canceling a finished attempt is a no-op.
func (s *Service) CancelAttempt(ctx context.Context, attemptID string, userID string) (*LiveAttempt, error) {
	live, err := s.GetAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	live.cancel()
	if err := live.Wait(ctx); err != nil {
		return nil, err
	}
	return live, nil
}

func (s *Service) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, live := range s.attempts {
		live.mu.Lock()
		expired := !live.finishedAt.IsZero() && now.Sub(live.finishedAt) > s.Retention
		live.mu.Unlock()
		if expired {
			delete(s.attempts, id)
		}
	}
}

// Shutdown cancels every running attempt and waits for them to stop.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	running := make([]*LiveAttempt, 0, len(s.attempts))
	for _, live := range s.attempts {
		running = append(running, live)
	}
	s.mu.Unlock()
	for _, live := range running {
		live.cancel()
		if err := live.Wait(ctx); err != nil {
			return
		}
	}
}

// Attendance is the process wide attempt service, set up at startup.
var Attendance *Service

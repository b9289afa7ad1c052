package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/logger"
)

type State string

const (
	StateIdle                 State = "idle"
	StateCapturingChallenge   State = "capturing_challenge"
	StateAwaitingLiveness     State = "awaiting_liveness"
	StateExtractingDescriptor State = "extracting_descriptor"
	StateMatching             State = "matching"
	StateCheckingLocation     State = "checking_location"
	StateRecording            State = "recording"
	StateDecided              State = "decided"
	StateCanceled             State = "canceled"
)

// Progress is published while an attempt runs.
type Progress struct {
	State    State             `json:"state"`
	Liveness liveness.Snapshot `json:"liveness"`
}

// Attempt is one employee's request to record attendance.
type Attempt struct {
	ID       string
	UserID   string
	Office   *geolocation.Office
	WorkMode geolocation.WorkMode
	Capture  CaptureSource
	Location geolocation.FixSource
	Metadata AttemptMetadata
	// Observe is called from the attempt's goroutines and must not block.
	Observe func(Progress)
}

func (a *Attempt) report(state State, snapshot liveness.Snapshot) {
	if a.Observe != nil {
		a.Observe(Progress{State: state, Liveness: snapshot})
	}
}

// Orchestrator runs the liveness, identity and location checks of an attempt
// and fuses them into a Decision.
type Orchestrator struct {
	Policy      Policy
	Faces       types.FaceService
	Enrollments EnrollmentStore
	// Sink is optional. Without it decisions are returned but not persisted.
	Sink RecordSink
	Now  func() time.Time
}

type identityOutcome struct {
	result *types.SimilarityResult
	err    error
	still  []byte
}

type livenessOutcome struct {
	passed   bool
	snapshot liveness.Snapshot
	kind     liveness.Kind
}

type locationOutcome struct {
	fix     *geolocation.GeoFix
	verdict *geolocation.LocationVerdict
	err     error
}

// Run executes the attempt to a decision. The blink challenge and the
// identity match run in sequence while the location fix is acquired in
// parallel. A canceled context yields ErrAttemptCanceled and no decision. When
// the decision cannot be recorded it is returned together with a *RecordError.
func (o *Orchestrator) Run(ctx context.Context, attempt *Attempt) (*Decision, error) {
	if attempt.Capture == nil {
		return nil, errors.New("attempt has no capture source")
	}
	detector, err := liveness.New(o.Policy.Liveness)
	if err != nil {
		return nil, err
	}
	defer attempt.Capture.Close()

	var (
		identity identityOutcome
		live     = livenessOutcome{kind: detector.Kind()}
		location locationOutcome
	)

	attempt.report(StateCapturingChallenge, detector.Snapshot())
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		location, err = o.checkLocation(gctx, attempt)
		return err
	})
	group.Go(func() error {
		if err := attempt.Capture.Open(gctx); err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			identity = identityOutcome{err: fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)}
			return nil
		}
		var err error
		live, err = o.runChallenge(gctx, attempt, detector)
		if err != nil {
			return err
		}
		identity, err = o.matchIdentity(gctx, attempt, detector.Snapshot())
		if err != nil {
			return err
		}
		attempt.report(StateCheckingLocation, detector.Snapshot())
		return nil
	})
	if err := group.Wait(); err != nil {
		attempt.report(StateCanceled, detector.Snapshot())
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			logger.Info("attendance attempt canceled", logger.LoggerOptions{
				Key:  "attemptID",
				Data: attempt.ID,
			})
			return nil, ErrAttemptCanceled
		}
		return nil, err
	}

	decision := o.decide(attempt, identity, live, location)
	logger.Info("attendance attempt decided", logger.LoggerOptions{
		Key:  "attemptID",
		Data: attempt.ID,
	}, logger.LoggerOptions{
		Key:  "userID",
		Data: attempt.UserID,
	}, logger.LoggerOptions{
		Key:  "reason",
		Data: decision.ReasonCode,
	}, logger.LoggerOptions{
		Key:  "detail",
		Data: decision.Detail,
	})

	// decided is published only once the sink has answered
	attempt.report(StateRecording, live.snapshot)
	err = o.record(ctx, attempt, decision, identity.still)
	attempt.report(StateDecided, live.snapshot)
	return decision, err
}

func (o *Orchestrator) record(ctx context.Context, attempt *Attempt, decision *Decision, still []byte) error {
	if o.Sink == nil {
		return nil
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.Policy.RecordTimeout)
	defer cancel()
	if err := o.Sink.Record(recordCtx, &Record{Decision: decision, Metadata: attempt.Metadata, Still: still}); err != nil {
		logger.Error("could not record attendance decision", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "attemptID",
			Data: attempt.ID,
		})
		return &RecordError{Err: err}
	}
	return nil
}

// runChallenge feeds frames to the detector until the challenge passes, the
// window or frame budget runs out, or the frame stream ends.
func (o *Orchestrator) runChallenge(ctx context.Context, attempt *Attempt, detector *liveness.Detector) (livenessOutcome, error) {
	challenge := o.Policy.challenge()
	attempt.report(StateAwaitingLiveness, detector.Snapshot())

	var expired <-chan time.Time
	if challenge.Window > 0 {
		timer := time.NewTimer(challenge.Window)
		defer timer.Stop()
		expired = timer.C
	}
	frames := attempt.Capture.Frames()
	seen := 0

challenge:
	for !challenge.Passed(detector) {
		if challenge.MaxFrames > 0 && seen >= challenge.MaxFrames {
			break
		}
		select {
		case <-ctx.Done():
			return livenessOutcome{}, ctx.Err()
		case <-expired:
			break challenge
		case frame, ok := <-frames:
			if !ok {
				break challenge
			}
			seen++
			detector.ProcessFrame(frame)
			attempt.report(StateAwaitingLiveness, detector.Snapshot())
		}
	}
	return livenessOutcome{
		passed:   challenge.Passed(detector),
		snapshot: detector.Snapshot(),
		kind:     detector.Kind(),
	}, nil
}

// matchIdentity compares a still frame against the enrolled descriptor. Stills
// without exactly one face are retried up to MaxCaptureAttempts times.
func (o *Orchestrator) matchIdentity(ctx context.Context, attempt *Attempt, snapshot liveness.Snapshot) (identityOutcome, error) {
	attempt.report(StateExtractingDescriptor, snapshot)
	enrolled, err := o.Enrollments.GetEnrolledEmbedding(ctx, attempt.UserID)
	if err != nil {
		if ctx.Err() != nil {
			return identityOutcome{}, ctx.Err()
		}
		return identityOutcome{err: err}, nil
	}
	if len(enrolled) != types.EmbeddingLength {
		return identityOutcome{err: &types.DimensionMismatchError{Candidate: types.EmbeddingLength, Enrolled: len(enrolled)}}, nil
	}

	var lastErr error
	var lastStill []byte
	for try := 1; try <= o.Policy.MaxCaptureAttempts; try++ {
		stillCtx, cancel := context.WithTimeout(ctx, o.Policy.StillTimeout)
		still, err := attempt.Capture.Still(stillCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return identityOutcome{}, ctx.Err()
			}
			return identityOutcome{err: fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)}, nil
		}
		lastStill = still

		result, err := o.Faces.Verify(ctx, still, enrolled, o.Policy.MatchThreshold)
		if err == nil {
			attempt.report(StateMatching, snapshot)
			rounded := result.SimilarityResult
			rounded.Similarity = biometric.RoundTo(rounded.Similarity, 4)
			return identityOutcome{result: &rounded, still: still}, nil
		}
		if ctx.Err() != nil {
			return identityOutcome{}, ctx.Err()
		}
		if !errors.Is(err, types.ErrNoFaceDetected) && !errors.Is(err, types.ErrMultipleFaces) {
			return identityOutcome{err: err, still: still}, nil
		}
		lastErr = err
		logger.Info("still frame rejected, capturing again", logger.LoggerOptions{
			Key:  "attempt",
			Data: try,
		}, logger.LoggerOptions{
			Key:  "cause",
			Data: err.Error(),
		})
	}
	return identityOutcome{err: lastErr, still: lastStill}, nil
}

func (o *Orchestrator) checkLocation(ctx context.Context, attempt *Attempt) (locationOutcome, error) {
	if attempt.Location == nil {
		return locationOutcome{err: geolocation.ErrSignalUnavailable}, nil
	}
	opts := geolocation.DefaultFixOptions()
	opts.Timeout = o.Policy.LocationTimeout
	fix, err := geolocation.NewAcquirer(attempt.Location, opts, o.Policy.LocationRetries).Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return locationOutcome{}, ctx.Err()
		}
		return locationOutcome{err: err}, nil
	}
	verdict := geolocation.CheckLocation(*fix, attempt.Office, geolocation.CheckPolicy{
		Mode:                attempt.WorkMode,
		MinAccuracyMeters:   o.Policy.MinAccuracyMeters,
		DefaultRadiusMeters: o.Policy.DefaultRadiusMeters,
	})
	return locationOutcome{fix: fix, verdict: &verdict}, nil
}

func (o *Orchestrator) decide(attempt *Attempt, identity identityOutcome, live livenessOutcome, location locationOutcome) *Decision {
	verdict := Fuse(Checks{
		Identity:     identity.result,
		IdentityErr:  identity.err,
		Liveness:     live.snapshot,
		LivenessKind: live.kind,
		LivenessPass: live.passed,
		Fix:          location.fix,
		Location:     location.verdict,
		LocationErr:  location.err,
		MinAccuracy:  o.Policy.MinAccuracyMeters,
	})

	decision := &Decision{
		ID:           utils.GenerateUULDString(),
		AttemptID:    attempt.ID,
		UserID:       attempt.UserID,
		Outcome:      verdict.Outcome,
		ReasonCode:   verdict.Reason,
		Message:      verdict.Message(attempt.Metadata.Language),
		BlinkCount:   live.snapshot.BlinkCount,
		LivenessKind: live.kind,
		WorkMode:     attempt.WorkMode,
		Location:     location.fix,
		DecidedAt:    o.now(),
		Detail:       verdict.Detail,
	}
	if attempt.Office != nil {
		decision.OfficeID = attempt.Office.ID
	}
	if identity.result != nil {
		similarity := identity.result.Similarity
		distance := identity.result.Distance
		decision.Similarity = &similarity
		decision.MatchDistance = &distance
	}
	if location.verdict != nil && location.verdict.DistanceMeters != nil {
		distance := biometric.RoundTo(*location.verdict.DistanceMeters, 1)
		decision.DistanceFromOfficeMeters = &distance
	}
	return decision
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

package verification

import (
	"errors"
	"math"
	"time"

	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/localization"
)

type Decision struct {
	ID         string     `json:"id"`
	AttemptID  string     `json:"attemptId"`
	UserID     string     `json:"userId"`
	Outcome    Outcome    `json:"outcome"`
	ReasonCode ReasonCode `json:"reasonCode"`
	Message    string     `json:"message"`

	Similarity    *float64      `json:"similarity,omitempty"`
	MatchDistance *float64      `json:"matchDistance,omitempty"`
	BlinkCount    int           `json:"blinkCount"`
	LivenessKind  liveness.Kind `json:"livenessKind"`

	WorkMode                 geolocation.WorkMode `json:"workMode"`
	OfficeID                 string               `json:"officeId,omitempty"`
	Location                 *geolocation.GeoFix  `json:"location,omitempty"`
	DistanceFromOfficeMeters *float64             `json:"distanceFromOfficeMeters,omitempty"`

	DecidedAt time.Time `json:"decidedAt"`
	// Detail carries the underlying error text for logs. It is never shown to users.
	Detail string `json:"-"`
}

func (d *Decision) Accepted() bool {
	return d.Outcome == Accepted
}

// Checks is what the three checks of an attempt produced. A nil result with a
// nil error means the check never ran.
type Checks struct {
	Identity     *types.SimilarityResult
	IdentityErr  error
	Liveness     liveness.Snapshot
	LivenessKind liveness.Kind
	LivenessPass bool
	Fix          *geolocation.GeoFix
	Location     *geolocation.LocationVerdict
	LocationErr  error
	MinAccuracy  float64
}

// Verdict is the fused result before it is stamped into a Decision.
type Verdict struct {
	Outcome Outcome
	Reason  ReasonCode
	Args    []any
	Detail  string
}

// Fuse combines the checks into one outcome. Every failing check contributes
// a reason and the highest-priority one names the rejection.
func Fuse(c Checks) Verdict {
	var failures []Verdict

	if c.IdentityErr != nil {
		failures = append(failures, Verdict{Reason: identityReason(c.IdentityErr), Detail: c.IdentityErr.Error()})
	} else if c.Identity == nil {
		failures = append(failures, Verdict{Reason: ReasonCaptureUnavailable, Detail: "identity check did not run"})
	} else if !c.Identity.IsMatch {
		failures = append(failures, Verdict{Reason: ReasonIdentityMismatch})
	}

	if !c.LivenessPass {
		failures = append(failures, Verdict{Reason: ReasonLivenessTimeout})
	}

	if c.LocationErr != nil {
		failures = append(failures, Verdict{Reason: acquisitionReason(c.LocationErr), Detail: c.LocationErr.Error()})
	} else if c.Location == nil {
		failures = append(failures, Verdict{Reason: ReasonLocationUnavailable, Detail: "location check did not run"})
	} else if !c.Location.Passed() {
		failures = append(failures, locationVerdict(c))
	}

	if len(failures) == 0 {
		return Verdict{Outcome: Accepted, Reason: ReasonAccepted}
	}
	best := failures[0]
	for _, f := range failures[1:] {
		if f.Reason.rank() < best.Reason.rank() {
			best = f
		}
	}
	best.Outcome = Rejected
	return best
}

func identityReason(err error) ReasonCode {
	var dimension *types.DimensionMismatchError
	var remote *types.RemoteServiceError
	switch {
	case errors.Is(err, ErrCaptureUnavailable):
		return ReasonCaptureUnavailable
	case errors.Is(err, ErrEnrollmentNotFound):
		return ReasonEnrollmentNotFound
	case errors.As(err, &dimension):
		return ReasonDimensionMismatch
	case errors.Is(err, types.ErrNoFaceDetected), errors.Is(err, types.ErrMultipleFaces):
		return ReasonNoFaceDetected
	case errors.As(err, &remote):
		return ReasonRemoteServiceError
	}
	return ReasonRemoteServiceError
}

func acquisitionReason(err error) ReasonCode {
	switch {
	case errors.Is(err, geolocation.ErrPermissionDenied):
		return ReasonLocationPermissionDenied
	case errors.Is(err, geolocation.ErrTimeout):
		return ReasonLocationTimeout
	}
	return ReasonLocationUnavailable
}

func locationVerdict(c Checks) Verdict {
	v := c.Location
	switch v.Reason {
	case geolocation.ReasonMocked:
		return Verdict{Reason: ReasonLocationMocked}
	case geolocation.ReasonNoOffice:
		return Verdict{Reason: ReasonOfficeNotSelected}
	case geolocation.ReasonOfficeInactive:
		return Verdict{Reason: ReasonOfficeInactive}
	case geolocation.ReasonOutsideGeofence:
		distance := 0.0
		if v.DistanceMeters != nil {
			distance = *v.DistanceMeters
		}
		return Verdict{Reason: ReasonOutsideGeofence, Args: []any{int(math.Round(distance)), int(math.Round(v.RadiusMeters))}}
	case geolocation.ReasonInaccurate:
		accuracy := 0.0
		if c.Fix != nil {
			accuracy = c.Fix.AccuracyMeters
		}
		return Verdict{Reason: ReasonLocationInaccurate, Args: []any{int(math.Round(accuracy)), int(math.Round(c.MinAccuracy))}}
	}
	return Verdict{Reason: ReasonLocationUnavailable, Detail: string(v.Reason)}
}

// Message renders the verdict for the attempt's language.
func (v Verdict) Message(lang string) string {
	return localization.Message(localization.Resolve(lang), string(v.Reason), v.Args...)
}

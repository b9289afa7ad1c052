package verification

type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// ReasonCode is the stable, machine readable cause of a decision. The values
// are persisted on attendance records and must not change.
type ReasonCode string

const (
	ReasonAccepted                 ReasonCode = "ACCEPTED"
	ReasonCaptureUnavailable       ReasonCode = "CAPTURE_UNAVAILABLE"
	ReasonEnrollmentNotFound       ReasonCode = "ENROLLMENT_NOT_FOUND"
	ReasonDimensionMismatch        ReasonCode = "DIMENSION_MISMATCH"
	ReasonRemoteServiceError       ReasonCode = "REMOTE_SERVICE_ERROR"
	ReasonNoFaceDetected           ReasonCode = "NO_FACE_DETECTED"
	ReasonIdentityMismatch         ReasonCode = "IDENTITY_MISMATCH"
	ReasonLivenessTimeout          ReasonCode = "LIVENESS_TIMEOUT"
	ReasonLocationMocked           ReasonCode = "LOCATION_MOCKED"
	ReasonOfficeNotSelected        ReasonCode = "OFFICE_NOT_SELECTED"
	ReasonOfficeInactive           ReasonCode = "OFFICE_INACTIVE"
	ReasonOutsideGeofence          ReasonCode = "OUTSIDE_GEOFENCE"
	ReasonLocationInaccurate       ReasonCode = "LOCATION_INACCURATE"
	ReasonLocationPermissionDenied ReasonCode = "LOCATION_PERMISSION_DENIED"
	ReasonLocationTimeout          ReasonCode = "LOCATION_TIMEOUT"
	ReasonLocationUnavailable      ReasonCode = "LOCATION_UNAVAILABLE"
)

// Rejection priority: the first failing check in this order names the
// decision. Identity failures come first, then liveness, then location
// trust, then geofence, then fix acquisition.
var reasonPriority = []ReasonCode{
	ReasonCaptureUnavailable,
	ReasonEnrollmentNotFound,
	ReasonDimensionMismatch,
	ReasonRemoteServiceError,
	ReasonNoFaceDetected,
	ReasonIdentityMismatch,
	ReasonLivenessTimeout,
	ReasonLocationMocked,
	ReasonOfficeNotSelected,
	ReasonOfficeInactive,
	ReasonOutsideGeofence,
	ReasonLocationInaccurate,
	ReasonLocationPermissionDenied,
	ReasonLocationTimeout,
	ReasonLocationUnavailable,
}

func (r ReasonCode) rank() int {
	for i, code := range reasonPriority {
		if code == r {
			return i
		}
	}
	return len(reasonPriority)
}

// IsLocation reports whether the reason comes from the location check.
func (r ReasonCode) IsLocation() bool {
	return r.rank() >= ReasonLocationMocked.rank() && r.rank() < len(reasonPriority)
}

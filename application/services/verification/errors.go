package verification

import (
	"errors"
	"fmt"
)

// ErrAttemptCanceled is returned when an attempt ends before a decision,
// either because the caller canceled it or a newer attempt replaced it.
var ErrAttemptCanceled = errors.New("attendance attempt canceled")

var ErrEnrollmentNotFound = errors.New("no enrolled face for user")

var ErrCaptureUnavailable = errors.New("capture source unavailable")

// RecordError is returned alongside a valid decision when the attendance
// record could not be written. It is not a biometric failure.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("attendance record not persisted: %v", e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

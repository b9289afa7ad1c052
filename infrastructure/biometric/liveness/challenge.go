package liveness

import "time"

type Verdict string

const (
	VerdictPending  Verdict = "pending"
	VerdictPassed   Verdict = "passed"
	VerdictTimedOut Verdict = "timed_out"
)

// Challenge bounds a blink challenge by wall time and, optionally, by the
// number of frames observed.
type Challenge struct {
	RequiredBlinks int
	Window         time.Duration
	MaxFrames      int
}

// Evaluate reports the challenge verdict for a detector that started at
// startedAt and has consumed frames frames.
func (c Challenge) Evaluate(d BlinkDetector, startedAt, now time.Time, frames int) Verdict {
	if d.BlinkCount() >= c.required() {
		return VerdictPassed
	}
	if c.Window > 0 && now.Sub(startedAt) >= c.Window {
		return VerdictTimedOut
	}
	if c.MaxFrames > 0 && frames >= c.MaxFrames {
		return VerdictTimedOut
	}
	return VerdictPending
}

func (c Challenge) Passed(d BlinkDetector) bool {
	return d.BlinkCount() >= c.required()
}

func (c Challenge) required() int {
	if c.RequiredBlinks < 1 {
		return 1
	}
	return c.RequiredBlinks
}

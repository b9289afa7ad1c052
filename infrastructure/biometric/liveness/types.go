package liveness

import "time"

const (
	// DefaultEARThreshold is the eye aspect ratio below which eyes count as closed.
	DefaultEARThreshold = 0.21
	// DefaultBlendshapeThreshold is the blink score above which eyes count as closed.
	DefaultBlendshapeThreshold = 0.3
	// DefaultMinClosedFrames is the closed run that must precede an open frame.
	DefaultMinClosedFrames = 2
	// DefaultCooldownFrames is the number of frames skipped after a score blink.
	DefaultCooldownFrames = 5

	EyeBlinkLeft  = "eyeBlinkLeft"
	EyeBlinkRight = "eyeBlinkRight"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one observation from the camera pipeline. Landmark frames carry six
// points per eye ordered p1..p6 (corners p1/p4, upper lid p2/p3, lower lid
// p6/p5). Blend-shape frames carry category scores in [0,1].
type Frame struct {
	LeftEye     []Point            `json:"leftEye,omitempty"`
	RightEye    []Point            `json:"rightEye,omitempty"`
	Blendshapes map[string]float64 `json:"blendshapes,omitempty"`
	CapturedAt  time.Time          `json:"capturedAt"`
}

type Phase string

const (
	PhaseOpen    Phase = "open"
	PhaseClosing Phase = "closing"
	PhaseBlinked Phase = "blinked"
)

type Kind string

const (
	KindEAR        Kind = "ear"
	KindBlendshape Kind = "blendshape"
)

// Snapshot is a read-only view of a detector, used for UI feedback.
type Snapshot struct {
	Phase         Phase `json:"phase"`
	BlinkCount    int   `json:"blinkCount"`
	EyesClosed    bool  `json:"eyesClosed"`
	FramesSeen    int   `json:"framesSeen"`
	FramesSkipped int   `json:"framesSkipped"`
}

package liveness

import (
	"fmt"
)

// BlinkDetector counts blinks over a stream of frames. Implementations are
// not safe for concurrent use; one attempt owns one detector.
type BlinkDetector interface {
	ProcessFrame(frame Frame) Phase
	BlinkCount() int
	AreEyesClosed() bool
	Snapshot() Snapshot
	Reset()
	Kind() Kind
}

// Detector runs the blink state machine shared by both observation kinds.
type Detector struct {
	classifier EyeClassifier
	rule       blinkRule

	state   counters
	phase   Phase
	seen    int
	skipped int
}

func NewEARDetector(threshold float64, minClosedFrames int) *Detector {
	if threshold <= 0 {
		threshold = DefaultEARThreshold
	}
	if minClosedFrames <= 0 {
		minClosedFrames = DefaultMinClosedFrames
	}
	return &Detector{
		classifier: EARClassifier{Threshold: threshold},
		rule:       streakRule{minClosed: minClosedFrames},
		phase:      PhaseOpen,
	}
}

func NewBlendshapeDetector(threshold float64, cooldownFrames int) *Detector {
	if threshold <= 0 {
		threshold = DefaultBlendshapeThreshold
	}
	if cooldownFrames < 0 {
		cooldownFrames = DefaultCooldownFrames
	}
	return &Detector{
		classifier: BlendshapeClassifier{Threshold: threshold},
		rule:       edgeRule{cooldown: cooldownFrames},
		phase:      PhaseOpen,
	}
}

// Config selects and tunes a detector.
type Config struct {
	Kind                Kind    `toml:"kind"`
	EARThreshold        float64 `toml:"ear_threshold"`
	MinClosedFrames     int     `toml:"min_closed_frames"`
	BlendshapeThreshold float64 `toml:"blendshape_threshold"`
	CooldownFrames      int     `toml:"cooldown_frames"`
}

func DefaultConfig() Config {
	return Config{
		Kind:                KindEAR,
		EARThreshold:        DefaultEARThreshold,
		MinClosedFrames:     DefaultMinClosedFrames,
		BlendshapeThreshold: DefaultBlendshapeThreshold,
		CooldownFrames:      DefaultCooldownFrames,
	}
}

func New(cfg Config) (*Detector, error) {
	switch cfg.Kind {
	case KindEAR, "":
		return NewEARDetector(cfg.EARThreshold, cfg.MinClosedFrames), nil
	case KindBlendshape:
		return NewBlendshapeDetector(cfg.BlendshapeThreshold, cfg.CooldownFrames), nil
	}
	return nil, fmt.Errorf("unknown liveness detector kind %q", cfg.Kind)
}

func (d *Detector) Kind() Kind {
	return d.classifier.Kind()
}

// ProcessFrame applies one frame. Frames without a usable face are no-ops.
func (d *Detector) ProcessFrame(frame Frame) Phase {
	closed, ok := d.classifier.Classify(frame)
	if !ok {
		d.skipped++
		return d.phase
	}
	d.seen++
	if d.rule.advance(&d.state, closed) {
		d.state.blinkCount++
		d.phase = PhaseBlinked
		return d.phase
	}
	if closed {
		d.phase = PhaseClosing
	} else {
		d.phase = PhaseOpen
	}
	return d.phase
}

func (d *Detector) BlinkCount() int {
	return d.state.blinkCount
}

// AreEyesClosed is feedback for the capture UI. It never satisfies liveness.
func (d *Detector) AreEyesClosed() bool {
	return d.rule.eyesClosed(&d.state)
}

func (d *Detector) Snapshot() Snapshot {
	return Snapshot{
		Phase:         d.phase,
		BlinkCount:    d.state.blinkCount,
		EyesClosed:    d.AreEyesClosed(),
		FramesSeen:    d.seen,
		FramesSkipped: d.skipped,
	}
}

func (d *Detector) Reset() {
	d.state = counters{}
	d.phase = PhaseOpen
	d.seen = 0
	d.skipped = 0
}

package liveness

import "math"

// EyeClassifier decides whether a frame shows closed eyes. ok is false when
// the frame carries nothing to classify.
type EyeClassifier interface {
	Classify(frame Frame) (closed bool, ok bool)
	Kind() Kind
}

type EARClassifier struct {
	Threshold float64
}

func (c EARClassifier) Kind() Kind { return KindEAR }

func (c EARClassifier) Classify(frame Frame) (bool, bool) {
	left, ok := EyeAspectRatio(frame.LeftEye)
	if !ok {
		return false, false
	}
	right, ok := EyeAspectRatio(frame.RightEye)
	if !ok {
		return false, false
	}
	return (left+right)/2 < c.Threshold, true
}

// EyeAspectRatio computes (|p2-p6| + |p3-p5|) / (2|p1-p4|) for one eye.
func EyeAspectRatio(eye []Point) (float64, bool) {
	if len(eye) != 6 {
		return 0, false
	}
	horizontal := distance(eye[0], eye[3])
	if horizontal == 0 {
		return 0, false
	}
	vertical := distance(eye[1], eye[5]) + distance(eye[2], eye[4])
	return vertical / (2 * horizontal), true
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

type BlendshapeClassifier struct {
	Threshold float64
}

func (c BlendshapeClassifier) Kind() Kind { return KindBlendshape }

// Classify averages the two eye blink categories. A missing category scores 0
// unless both are missing, in which case the frame is ignored.
func (c BlendshapeClassifier) Classify(frame Frame) (bool, bool) {
	if len(frame.Blendshapes) == 0 {
		return false, false
	}
	left, hasLeft := frame.Blendshapes[EyeBlinkLeft]
	right, hasRight := frame.Blendshapes[EyeBlinkRight]
	if !hasLeft && !hasRight {
		return false, false
	}
	return (left+right)/2 > c.Threshold, true
}

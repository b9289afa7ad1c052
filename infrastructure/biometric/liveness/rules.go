package liveness

// blinkRule advances the shared counters for one classified frame and reports
// whether a blink completed on it.
type blinkRule interface {
	advance(s *counters, closed bool) bool
	eyesClosed(s *counters) bool
}

type counters struct {
	closedStreak int
	openStreak   int
	wasClosed    bool
	lastClosed   bool
	cooldown     int
	blinkCount   int
}

// streakRule fires on the first open frame after at least minClosed closed frames.
type streakRule struct {
	minClosed int
}

func (r streakRule) advance(s *counters, closed bool) bool {
	s.lastClosed = closed
	if closed {
		s.closedStreak++
		s.openStreak = 0
		return false
	}
	s.openStreak++
	blinked := s.closedStreak >= r.minClosed
	s.closedStreak = 0
	return blinked
}

func (r streakRule) eyesClosed(s *counters) bool {
	return s.closedStreak >= r.minClosed
}

// edgeRule fires on a closed to open transition, then ignores cooldown frames.
// Frames inside the cooldown do not update the previous state.
type edgeRule struct {
	cooldown int
}

func (r edgeRule) advance(s *counters, closed bool) bool {
	s.lastClosed = closed
	if s.cooldown > 0 {
		s.cooldown--
		return false
	}
	blinked := s.wasClosed && !closed
	if blinked {
		s.cooldown = r.cooldown
	}
	if closed {
		s.closedStreak++
		s.openStreak = 0
	} else {
		s.openStreak++
		s.closedStreak = 0
	}
	s.wasClosed = closed
	return blinked
}

func (r edgeRule) eyesClosed(s *counters) bool {
	return s.lastClosed
}

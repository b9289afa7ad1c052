package geolocation

import (
	"context"
	"sync"
)

// PushedFixSource receives fixes reported by a client device during one
// attempt. CurrentFix returns the oldest report still queued, or waits for the
// next one to be posted, or for ctx to end. At most the two latest unclaimed
// reports are queued, and a source never outlives its attempt.
type PushedFixSource struct {
	mu      sync.Mutex
	waiters []chan FixReport
	pending []FixReport
}

type FixReport struct {
	Fix *GeoFix
	Err error
}

func NewPushedFixSource() *PushedFixSource {
	return &PushedFixSource{}
}

// Push delivers a report to the oldest waiter, or queues it when nobody waits.
func (s *PushedFixSource) Push(report FixReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiters) > 0 {
		waiter := s.waiters[0]
		s.waiters = s.waiters[1:]
		waiter <- report
		return
	}
	s.pending = append(s.pending, report)
	if len(s.pending) > 2 {
		s.pending = s.pending[len(s.pending)-2:]
	}
}

func (s *PushedFixSource) CurrentFix(ctx context.Context, opts FixOptions) (*GeoFix, error) {
	s.mu.Lock()
	if len(s.pending) > 0 {
		report := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		return report.Fix, report.Err
	}
	waiter := make(chan FixReport, 1)
	s.waiters = append(s.waiters, waiter)
	s.mu.Unlock()

	select {
	case report := <-waiter:
		return report.Fix, report.Err
	case <-ctx.Done():
		s.mu.Lock()
		for i, w := range s.waiters {
			if w == waiter {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		// a report may have landed between ctx ending and the removal above
		select {
		case report := <-waiter:
			return report.Fix, report.Err
		default:
		}
		return nil, ctx.Err()
	}
}

// SequenceFixSource replays a fixed list of reports, repeating the last one.
type SequenceFixSource struct {
	mu      sync.Mutex
	Reports []FixReport
	calls   int
}

func (s *SequenceFixSource) CurrentFix(ctx context.Context, opts FixOptions) (*GeoFix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.Reports) == 0 {
		return nil, ErrSignalUnavailable
	}
	i := s.calls
	if i >= len(s.Reports) {
		i = len(s.Reports) - 1
	}
	s.calls++
	return s.Reports[i].Fix, s.Reports[i].Err
}

func (s *SequenceFixSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

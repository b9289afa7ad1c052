package verification

import (
	"context"
	"sync"
)

// Sessions keeps at most one running attempt per session. Beginning a new
// attempt cancels the previous one and waits for it to wind down, so two
// attempts of a session never share detector or capture state.
type Sessions struct {
	mu     sync.Mutex
	active map[string]*sessionHandle
}

type sessionHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessions() *Sessions {
	return &Sessions{active: map[string]*sessionHandle{}}
}

// Begin registers a new attempt for sessionID and returns its context and a
// finish func that must be called once the attempt returns.
func (s *Sessions) Begin(ctx context.Context, sessionID string) (context.Context, func()) {
	for {
		s.mu.Lock()
		prior, ok := s.active[sessionID]
		if !ok {
			break
		}
		s.mu.Unlock()
		prior.cancel()
		<-prior.done
	}
	attemptCtx, cancel := context.WithCancel(ctx)
	handle := &sessionHandle{cancel: cancel, done: make(chan struct{})}
	s.active[sessionID] = handle
	s.mu.Unlock()

	var once sync.Once
	return attemptCtx, func() {
		once.Do(func() {
			cancel()
			s.mu.Lock()
			if s.active[sessionID] == handle {
				delete(s.active, sessionID)
			}
			s.mu.Unlock()
			close(handle.done)
		})
	}
}

// Cancel stops the running attempt of a session, if any.
func (s *Sessions) Cancel(sessionID string) bool {
	s.mu.Lock()
	handle, ok := s.active[sessionID]
	s.mu.Unlock()
	if ok {
		handle.cancel()
	}
	return ok
}

func (s *Sessions) Active(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[sessionID]
	return ok
}

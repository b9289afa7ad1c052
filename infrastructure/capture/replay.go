package capture

import (
	"context"
	"errors"
	"sync"

	"mruput.io/infrastructure/biometric/liveness"
)

var (
	ErrNoStill = errors.New("no still frame available")
	ErrClosed  = errors.New("capture source closed")
)

// Replay serves a recorded attempt: a fixed frame stream followed by still
// frames handed out in order.
type Replay struct {
	mu     sync.Mutex
	frames chan liveness.Frame
	stills [][]byte
	next   int
	closed bool
	opened bool
}

func NewReplay(frames []liveness.Frame, stills [][]byte) *Replay {
	ch := make(chan liveness.Frame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	close(ch)
	return &Replay{frames: ch, stills: stills}
}

func (r *Replay) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.opened = true
	return nil
}

func (r *Replay) Frames() <-chan liveness.Frame {
	return r.frames
}

func (r *Replay) Still(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= len(r.stills) {
		return nil, ErrNoStill
	}
	still := r.stills[r.next]
	r.next++
	return still, nil
}

func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Replay) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

package capture

import (
	"context"
	"sync"
	"sync/atomic"

	"mruput.io/infrastructure/biometric/liveness"
)

// FrameBuffer is how many pushed frames may wait for the detector. Frames
// beyond it are dropped and count as missed observations.
const FrameBuffer = 64

// Push is a capture source fed by a remote client: frames and still images
// arrive through PushFrames and PushStill.
type Push struct {
	frames    chan liveness.Frame
	stills    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

func NewPush() *Push {
	return &Push{
		frames: make(chan liveness.Frame, FrameBuffer),
		stills: make(chan []byte, 1),
		done:   make(chan struct{}),
	}
}

func (p *Push) Open(ctx context.Context) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
		return nil
	}
}

func (p *Push) Frames() <-chan liveness.Frame {
	return p.frames
}

// PushFrames queues frames in order and returns how many were accepted.
func (p *Push) PushFrames(frames ...liveness.Frame) (int, error) {
	accepted := 0
	for _, f := range frames {
		select {
		case <-p.done:
			return accepted, ErrClosed
		default:
		}
		select {
		case p.frames <- f:
			accepted++
		default:
			p.dropped.Add(1)
		}
	}
	return accepted, nil
}

// PushStill offers a still frame. An unread still is replaced by the newer one.
func (p *Push) PushStill(image []byte) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	for {
		select {
		case p.stills <- image:
			return nil
		default:
		}
		select {
		case <-p.stills:
		default:
		}
	}
}

func (p *Push) Still(ctx context.Context) ([]byte, error) {
	select {
	case still := <-p.stills:
		return still, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrClosed
	}
}

func (p *Push) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Push) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return nil
}

package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mruput.io/infrastructure/biometric/liveness"
)

func TestPush_FramesKeepOrderAndDropOverflow(t *testing.T) {
	p := NewPush()
	frames := make([]liveness.Frame, FrameBuffer+3)
	for i := range frames {
		frames[i] = liveness.Frame{CapturedAt: time.Unix(int64(i), 0)}
	}

	accepted, err := p.PushFrames(frames...)
	require.NoError(t, err)
	assert.Equal(t, FrameBuffer, accepted)
	assert.Equal(t, int64(3), p.Dropped())

	for i := 0; i < FrameBuffer; i++ {
		f := <-p.Frames()
		assert.Equal(t, int64(i), f.CapturedAt.Unix())
	}
}

func TestPush_LatestStillWins(t *testing.T) {
	p := NewPush()
	require.NoError(t, p.PushStill([]byte("first")))
	require.NoError(t, p.PushStill([]byte("second")))

	still, err := p.Still(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", string(still))
}

func TestPush_CloseUnblocksStill(t *testing.T) {
	p := NewPush()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Close()
	}()
	_, err := p.Still(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.PushFrames(liveness.Frame{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Open(context.Background()), ErrClosed)
	assert.NoError(t, p.Close(), "close is idempotent")
}

func TestReplay(t *testing.T) {
	r := NewReplay([]liveness.Frame{{}, {}}, [][]byte{[]byte("a")})
	require.NoError(t, r.Open(context.Background()))

	count := 0
	for range r.Frames() {
		count++
	}
	assert.Equal(t, 2, count)

	still, err := r.Still(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", string(still))

	_, err = r.Still(context.Background())
	assert.ErrorIs(t, err, ErrNoStill)

	r.Close()
	assert.True(t, r.Closed())
	_, err = r.Still(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

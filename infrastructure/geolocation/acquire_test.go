package geolocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goodFix = &GeoFix{Latitude: -6.1755, Longitude: 106.8272, AccuracyMeters: 5}

func TestAcquirer_RetriesOnceOnTransientFailure(t *testing.T) {
	tests := []struct {
		name      string
		reports   []FixReport
		wantErr   error
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			reports:   []FixReport{{Fix: goodFix}},
			wantCalls: 1,
		},
		{
			name:      "timeout then success",
			reports:   []FixReport{{Err: ErrTimeout}, {Fix: goodFix}},
			wantCalls: 2,
		},
		{
			name:      "signal lost then success",
			reports:   []FixReport{{Err: ErrSignalUnavailable}, {Fix: goodFix}},
			wantCalls: 2,
		},
		{
			name:      "two timeouts give up",
			reports:   []FixReport{{Err: ErrTimeout}, {Err: ErrTimeout}, {Fix: goodFix}},
			wantErr:   ErrTimeout,
			wantCalls: 2,
		},
		{
			name:      "permission denied is not retried",
			reports:   []FixReport{{Err: ErrPermissionDenied}, {Fix: goodFix}},
			wantErr:   ErrPermissionDenied,
			wantCalls: 1,
		},
		{
			name:      "unknown failure is treated as signal loss",
			reports:   []FixReport{{Err: errors.New("gps chip reset")}, {Err: errors.New("gps chip reset")}},
			wantErr:   ErrSignalUnavailable,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &SequenceFixSource{Reports: tt.reports}
			acquirer := NewAcquirer(source, DefaultFixOptions(), 1)

			fix, err := acquirer.Acquire(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, fix)
			} else {
				require.NoError(t, err)
				assert.Equal(t, goodFix, fix)
			}
			assert.Equal(t, tt.wantCalls, source.Calls())
		})
	}
}

type blockingSource struct {
	calls int
}

func (b *blockingSource) CurrentFix(ctx context.Context, opts FixOptions) (*GeoFix, error) {
	b.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAcquirer_TimeoutPerAttempt(t *testing.T) {
	source := &blockingSource{}
	acquirer := NewAcquirer(source, FixOptions{HighAccuracy: true, Timeout: 10 * time.Millisecond}, 1)

	_, err := acquirer.Acquire(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 2, source.calls)
}

func TestAcquirer_RetriesAreCappedAtOne(t *testing.T) {
	source := &SequenceFixSource{Reports: []FixReport{{Err: ErrTimeout}}}
	acquirer := NewAcquirer(source, DefaultFixOptions(), 4)
	assert.Equal(t, MaxRetries, acquirer.Retries)

	_, err := acquirer.Acquire(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 2, source.Calls())

	source = &SequenceFixSource{Reports: []FixReport{{Err: ErrTimeout}}}
	unchecked := &Acquirer{Source: source, Options: DefaultFixOptions(), Retries: 4}
	_, err = unchecked.Acquire(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 2, source.Calls())
}

func TestAcquirer_CancelStopsRetries(t *testing.T) {
	source := &blockingSource{}
	acquirer := NewAcquirer(source, FixOptions{Timeout: time.Second}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := acquirer.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, source.calls)
}

func TestPushedFixSource(t *testing.T) {
	source := NewPushedFixSource()

	source.Push(FixReport{Fix: goodFix})
	fix, err := source.CurrentFix(context.Background(), DefaultFixOptions())
	require.NoError(t, err)
	assert.Equal(t, goodFix, fix)

	done := make(chan error, 1)
	go func() {
		_, err := source.CurrentFix(context.Background(), DefaultFixOptions())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	source.Push(FixReport{Err: ErrPermissionDenied})
	assert.ErrorIs(t, <-done, ErrPermissionDenied)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = source.CurrentFix(ctx, DefaultFixOptions())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPushedFixSourceKeepsTwoLatestReports(t *testing.T) {
	source := NewPushedFixSource()
	first := &GeoFix{Latitude: 1}
	second := &GeoFix{Latitude: 2}
	third := &GeoFix{Latitude: 3}
	source.Push(FixReport{Fix: first})
	source.Push(FixReport{Fix: second})
	source.Push(FixReport{Fix: third})

	fix, err := source.CurrentFix(context.Background(), DefaultFixOptions())
	require.NoError(t, err)
	assert.Same(t, second, fix)
	fix, err = source.CurrentFix(context.Background(), DefaultFixOptions())
	require.NoError(t, err)
	assert.Same(t, third, fix)
}

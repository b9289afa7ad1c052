package biometric

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mruput.io/infrastructure/biometric/types"
)

type countingProvider struct {
	loads     atomic.Int32
	loadErr   error
	embedding types.FaceEmbedding
	describe  error
}

func (p *countingProvider) Load(ctx context.Context) error {
	p.loads.Add(1)
	time.Sleep(20 * time.Millisecond)
	return p.loadErr
}

func (p *countingProvider) Describe(ctx context.Context, image []byte) (types.FaceEmbedding, error) {
	return p.embedding, p.describe
}

func TestLocalFaceService_InitLoadsOnce(t *testing.T) {
	provider := &countingProvider{embedding: embedding(0.5)}
	service := NewLocalFaceService(provider)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := service.Init(context.Background()); err != nil {
				t.Errorf("Init() error = %v", err)
			}
		}()
	}
	wg.Wait()
	service.Init(context.Background())

	if got := provider.loads.Load(); got != 1 {
		t.Errorf("provider loaded %d times, want 1", got)
	}
	if !service.Loaded() {
		t.Error("service should report loaded")
	}
}

func TestLocalFaceService_InitRetriesAfterFailure(t *testing.T) {
	provider := &countingProvider{loadErr: errors.New("model file missing")}
	service := NewLocalFaceService(provider)

	if err := service.Init(context.Background()); err == nil {
		t.Fatal("Init() expected error")
	}
	provider.loadErr = nil
	if err := service.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got := provider.loads.Load(); got != 2 {
		t.Errorf("provider loaded %d times, want 2", got)
	}
}

func TestLocalFaceService_Verify(t *testing.T) {
	tests := []struct {
		name      string
		provider  *countingProvider
		enrolled  types.FaceEmbedding
		wantMatch bool
		wantErr   error
	}{
		{
			name:      "same face",
			provider:  &countingProvider{embedding: embedding(0.5)},
			enrolled:  embedding(0.5),
			wantMatch: true,
		},
		{
			name:     "different face",
			provider: &countingProvider{embedding: embedding(0.5)},
			enrolled: embedding(0.0),
		},
		{
			name:     "no face",
			provider: &countingProvider{},
			enrolled: embedding(0.5),
			wantErr:  types.ErrNoFaceDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewLocalFaceService(tt.provider)
			result, err := service.Verify(context.Background(), []byte("still"), tt.enrolled, types.DefaultMatchThreshold)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() unexpected error = %v", err)
			}
			if result.IsMatch != tt.wantMatch {
				t.Errorf("Verify() isMatch = %v, want %v", result.IsMatch, tt.wantMatch)
			}
			if len(result.Candidate) != types.EmbeddingLength {
				t.Errorf("Verify() candidate length = %d", len(result.Candidate))
			}
		})
	}
}

func TestLocalFaceService_RejectsWrongDescriptorSize(t *testing.T) {
	service := NewLocalFaceService(&countingProvider{embedding: embedding(0.5)[:64]})
	_, err := service.Enroll(context.Background(), []byte("still"))
	var mismatch *types.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Enroll() error = %v, want DimensionMismatchError", err)
	}
}

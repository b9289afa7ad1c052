package biometric

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/logger"
)

// LocalFaceService extracts descriptors through an EmbeddingProvider and runs
// the comparison in process. The provider is loaded at most once; concurrent
// callers that arrive during a load wait for that same load.
type LocalFaceService struct {
	Provider types.EmbeddingProvider

	loaded atomic.Bool
	group  singleflight.Group
}

func NewLocalFaceService(provider types.EmbeddingProvider) *LocalFaceService {
	return &LocalFaceService{Provider: provider}
}

func (lfs *LocalFaceService) Init(ctx context.Context) error {
	if lfs.loaded.Load() {
		return nil
	}
	_, err, shared := lfs.group.Do("load", func() (interface{}, error) {
		if lfs.loaded.Load() {
			return nil, nil
		}
		if err := lfs.Provider.Load(ctx); err != nil {
			return nil, err
		}
		lfs.loaded.Store(true)
		logger.Info("face embedding provider loaded")
		return nil, nil
	})
	if err != nil {
		logger.Error("could not load face embedding provider", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "shared",
			Data: shared,
		})
		return err
	}
	return nil
}

func (lfs *LocalFaceService) Loaded() bool {
	return lfs.loaded.Load()
}

func (lfs *LocalFaceService) Enroll(ctx context.Context, image []byte) (types.FaceEmbedding, error) {
	if err := lfs.Init(ctx); err != nil {
		return nil, err
	}
	embedding, err := lfs.Provider.Describe(ctx, image)
	if err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, types.ErrNoFaceDetected
	}
	if len(embedding) != types.EmbeddingLength {
		return nil, fmt.Errorf("provider returned a %d value descriptor: %w", len(embedding),
			&types.DimensionMismatchError{Candidate: len(embedding), Enrolled: types.EmbeddingLength})
	}
	return embedding, nil
}

func (lfs *LocalFaceService) Verify(ctx context.Context, image []byte, enrolled types.FaceEmbedding, threshold float64) (*types.VerifyResult, error) {
	candidate, err := lfs.Enroll(ctx, image)
	if err != nil {
		return nil, err
	}
	result, err := Match(candidate, enrolled, threshold)
	if err != nil {
		return nil, err
	}
	return &types.VerifyResult{SimilarityResult: *result, Candidate: candidate}, nil
}

// Identify compares the face in image against every gallery entry.
func (lfs *LocalFaceService) Identify(ctx context.Context, image []byte, gallery []types.GalleryEntry, threshold float64) (*types.BestMatch, bool, error) {
	candidate, err := lfs.Enroll(ctx, image)
	if err != nil {
		return nil, false, err
	}
	return FindBestMatch(candidate, gallery, threshold)
}

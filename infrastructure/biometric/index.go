package biometric

import (
	"context"
	"fmt"
	"time"

	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/logger"
)

// FaceService is the engine behind attendance attempts and the face routes.
var FaceService types.FaceService

// Provider names the extractor behind FaceService. It is stored with
// enrollments so descriptors of different models never mix. Both backends
// extract through the face service.
const Provider = "face-service"

type Options struct {
	// Backend is "remote" to delegate comparisons or "local" to compare in
	// process with descriptors from the remote extractor.
	Backend string
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

func InitialiseBiometricService(ctx context.Context, opts Options) error {
	remote := NewRemoteFaceService(opts.BaseURL, opts.Timeout, opts.Retries)
	remote.APIKey = opts.APIKey
	switch opts.Backend {
	case "remote", "":
		FaceService = remote
	case "local":
		local := NewLocalFaceService(remote)
		if err := local.Init(ctx); err != nil {
			logger.Warning("face provider not ready at startup, loading on first use", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		FaceService = local
	default:
		return fmt.Errorf("unknown face backend %q", opts.Backend)
	}
	logger.Info("face service initialised", logger.LoggerOptions{
		Key:  "backend",
		Data: opts.Backend,
	})
	return nil
}

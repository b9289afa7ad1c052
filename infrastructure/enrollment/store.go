package enrollment

import (
	"context"

	"mruput.io/infrastructure/biometric/types"
)

// Store is an enrollment backend: it feeds attempts, accepts new enrollments
// and identifies unknown faces.
type Store interface {
	GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error)
	SaveEnrollment(ctx context.Context, userID string, embedding types.FaceEmbedding, provider string) error
	Identify(ctx context.Context, embedding types.FaceEmbedding, threshold float64) (*types.BestMatch, bool, error)
}

var (
	_ Store = (*MongoStore)(nil)
	_ Store = (*PGVectorStore)(nil)
)

// EnrollmentStore is the backend chosen at startup.
var EnrollmentStore Store

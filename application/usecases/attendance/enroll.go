package attendance_usecases

import (
	"context"

	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/logger"
)

// EnrollmentWriter stores a new reference descriptor for an employee.
type EnrollmentWriter interface {
	SaveEnrollment(ctx context.Context, userID string, embedding types.FaceEmbedding, provider string) error
}

// EnrollFace extracts the descriptor of image and makes it the employee's
// reference, replacing any earlier enrollment.
func EnrollFace(ctx context.Context, faces types.FaceService, store EnrollmentWriter, provider string, userID string, image []byte) (types.FaceEmbedding, error) {
	embedding, err := faces.Enroll(ctx, image)
	if err != nil {
		return nil, err
	}
	if len(embedding) != types.EmbeddingLength {
		return nil, &types.DimensionMismatchError{Candidate: len(embedding), Enrolled: types.EmbeddingLength}
	}
	if err := store.SaveEnrollment(ctx, userID, embedding, provider); err != nil {
		return nil, err
	}
	logger.Info("face enrolled", logger.LoggerOptions{
		Key:  "userID",
		Data: userID,
	}, logger.LoggerOptions{
		Key:  "provider",
		Data: provider,
	})
	return embedding, nil
}

package types

import (
	"context"
	"errors"
	"fmt"
)

// EmbeddingLength is the descriptor size produced by the face model.
const EmbeddingLength = 128

// DefaultMatchThreshold is the euclidean distance below which two embeddings
// belong to the same person.
const DefaultMatchThreshold = 0.6

// FaceEmbedding is a face descriptor. Values are only comparable when they come
// from the same provider and model version.
type FaceEmbedding []float32

type SimilarityResult struct {
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
	IsMatch    bool    `json:"isMatch"`
}

// ErrNoFaceDetected is returned when an image holds no usable face.
var ErrNoFaceDetected = errors.New("no face detected in the image")

// ErrMultipleFaces is returned when an image holds more than one face.
var ErrMultipleFaces = errors.New("multiple faces detected")

type DimensionMismatchError struct {
	Candidate int
	Enrolled  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: candidate has %d values, enrolled has %d", e.Candidate, e.Enrolled)
}

// RemoteServiceError wraps failures of the remote verification delegate.
type RemoteServiceError struct {
	StatusCode int
	Message    string
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("face service error: %s", e.Message)
	}
	return fmt.Sprintf("face service error (status %d): %s", e.StatusCode, e.Message)
}

// EmbeddingProvider turns an image into a descriptor. Describe returns
// ErrNoFaceDetected when the image holds no face.
type EmbeddingProvider interface {
	Load(ctx context.Context) error
	Describe(ctx context.Context, image []byte) (FaceEmbedding, error)
}

// FaceService is implemented by both the in-process engine and the remote
// delegate so either can back an attendance attempt.
type FaceService interface {
	Enroll(ctx context.Context, image []byte) (FaceEmbedding, error)
	Verify(ctx context.Context, image []byte, enrolled FaceEmbedding, threshold float64) (*VerifyResult, error)
}

type VerifyResult struct {
	SimilarityResult
	// Candidate is nil when the embedding was computed remotely and not returned.
	Candidate FaceEmbedding `json:"-"`
}

type GalleryEntry struct {
	ID       string        `json:"id"`
	Encoding FaceEmbedding `json:"encoding"`
}

type BestMatch struct {
	ID         string  `json:"id"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// Wire types of the remote verification contract.

type EnrollRequest struct {
	Image string `json:"image"`
}

type VerifyRequest struct {
	Image          string    `json:"image"`
	StoredEncoding []float64 `json:"stored_encoding"`
}

type BatchVerifyRequest struct {
	Image     string             `json:"image"`
	Encodings []BatchEncodingDTO `json:"encodings"`
}

type BatchEncodingDTO struct {
	ID       string    `json:"id"`
	Encoding []float64 `json:"encoding"`
}

type FaceServiceResponse struct {
	Success    bool      `json:"success"`
	Encoding   []float64 `json:"encoding,omitempty"`
	Match      *bool     `json:"match,omitempty"`
	Distance   *float64  `json:"distance,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Threshold  *float64  `json:"threshold,omitempty"`
	Message    *string   `json:"message,omitempty"`
	Error      *string   `json:"error,omitempty"`
}

type BatchVerifyResponse struct {
	Success    bool       `json:"success"`
	MatchFound bool       `json:"match_found"`
	BestMatch  *BestMatch `json:"best_match,omitempty"`
	Message    *string    `json:"message,omitempty"`
	Error      *string    `json:"error,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ToFloat64 widens an embedding for JSON transport.
func (e FaceEmbedding) ToFloat64() []float64 {
	out := make([]float64, len(e))
	for i, v := range e {
		out[i] = float64(v)
	}
	return out
}

func FromFloat64(values []float64) FaceEmbedding {
	out := make(FaceEmbedding, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

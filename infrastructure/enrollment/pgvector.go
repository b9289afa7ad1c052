package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"mruput.io/application/services/verification"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/types"
)

// PGVectorStore keeps one descriptor per user in a pgvector column, which also
// serves nearest-neighbour identification.
type PGVectorStore struct {
	pool *pgxpool.Pool
}

func NewPGVectorStore(ctx context.Context, connString string) (*PGVectorStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store := &PGVectorStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PGVectorStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PGVectorStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS face_enrollments (
			user_id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			provider TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, types.EmbeddingLength),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialise schema: %w", err)
		}
	}
	return nil
}

func (s *PGVectorStore) GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error) {
	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, `SELECT embedding FROM face_enrollments WHERE user_id = $1`, userID).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, verification.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}
	return types.FaceEmbedding(vec.Slice()), nil
}

func (s *PGVectorStore) SaveEnrollment(ctx context.Context, userID string, embedding types.FaceEmbedding, provider string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO face_enrollments (user_id, embedding, provider)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET embedding = EXCLUDED.embedding, provider = EXCLUDED.provider, updated_at = now()`,
		userID, pgvector.NewVector(embedding), provider)
	if err != nil {
		return fmt.Errorf("failed to store enrollment: %w", err)
	}
	return nil
}

// Identify returns the enrolled user closest to the embedding by euclidean
// distance. ok is false when the closest user is not within threshold.
func (s *PGVectorStore) Identify(ctx context.Context, embedding types.FaceEmbedding, threshold float64) (*types.BestMatch, bool, error) {
	var match types.BestMatch
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, embedding <-> $1 AS distance
		FROM face_enrollments
		ORDER BY embedding <-> $1
		LIMIT 1`,
		pgvector.NewVector(embedding)).Scan(&match.ID, &match.Distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, biometric.ErrEmptyGallery
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to search enrollments: %w", err)
	}
	match.Confidence = biometric.Similarity(match.Distance) * 100
	return &match, match.Distance < threshold, nil
}

package enrollment

import (
	"context"
	"time"

	"mruput.io/application/services/verification"
	"mruput.io/entities"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/database/repository/cache"
	"mruput.io/infrastructure/database/repository/mongo"
	"mruput.io/infrastructure/logger"
)

// MongoStore keeps enrollments in mongo and caches descriptors in redis. Cache
// failures fall through to mongo.
type MongoStore struct {
	Repo  *mongo.MongoRepository[entities.FaceEnrollment]
	Cache *cache.RedisRepository
	TTL   time.Duration
}

func (s *MongoStore) GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error) {
	if s.Cache != nil {
		if raw := s.Cache.FindOneByteArray(ctx, cacheKey(userID)); raw != nil {
			if embedding, err := decodeEmbedding(*raw); err == nil {
				return embedding, nil
			}
			s.Cache.DeleteOne(ctx, cacheKey(userID))
		}
	}

	enrollment, err := s.Repo.FindOneByFilter(ctx, map[string]interface{}{"userID": userID})
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, verification.ErrEnrollmentNotFound
	}
	embedding := types.FaceEmbedding(enrollment.Encoding)
	if s.Cache != nil {
		s.Cache.CreateEntry(ctx, cacheKey(userID), encodeEmbedding(embedding), s.TTL)
	}
	return embedding, nil
}

// SaveEnrollment replaces any previous enrollment of the user.
func (s *MongoStore) SaveEnrollment(ctx context.Context, userID string, embedding types.FaceEmbedding, provider string) error {
	now := time.Now()
	if _, err := s.Repo.UpdatePartialByFilter(ctx, map[string]interface{}{"userID": userID}, map[string]interface{}{
		"deletedAt": now,
	}); err != nil {
		return err
	}
	_, err := s.Repo.CreateOne(ctx, entities.FaceEnrollment{
		UserID:       userID,
		Encoding:     embedding,
		Provider:     provider,
		ModelVersion: modelVersion(provider),
	})
	if err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.DeleteOne(ctx, cacheKey(userID))
	}
	logger.Info("face enrollment saved", logger.LoggerOptions{
		Key:  "userID",
		Data: userID,
	})
	return nil
}

func modelVersion(provider string) string {
	return provider + "/128d"
}

// Identify scans every active enrollment for the closest descriptor.
func (s *MongoStore) Identify(ctx context.Context, embedding types.FaceEmbedding, threshold float64) (*types.BestMatch, bool, error) {
	enrollments, err := s.Repo.FindMany(ctx, map[string]interface{}{})
	if err != nil {
		return nil, false, err
	}
	gallery := make([]types.GalleryEntry, 0, len(*enrollments))
	for _, e := range *enrollments {
		gallery = append(gallery, types.GalleryEntry{ID: e.UserID, Encoding: e.Encoding})
	}
	return biometric.FindBestMatch(embedding, gallery, threshold)
}

package attendance_usecases

import (
	"context"
	"fmt"
	"time"

	"mruput.io/application/repository"
	"mruput.io/infrastructure/database/repository/cache"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/logger"
)

// RepositoryOffices looks offices up in the OfficeLocations collection.
type RepositoryOffices struct{}

func (RepositoryOffices) FindOffice(ctx context.Context, officeID string) (*geolocation.Office, error) {
	office, err := repository.OfficeLocationRepo().FindByID(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, nil
	}
	return office.ToOffice(), nil
}

// CacheAttemptLimiter counts attempts per employee in redis. When redis is
// unreachable every attempt is allowed.
type CacheAttemptLimiter struct {
	Max    int64
	Window time.Duration
}

func (l CacheAttemptLimiter) Allow(ctx context.Context, userID string) bool {
	if l.Max <= 0 {
		return true
	}
	count := cache.Cache.IncrementField(ctx, fmt.Sprintf("%s-attendance-attempts", userID), 1, l.Window)
	if count > l.Max {
		logger.Warning("attendance attempt limit hit", logger.LoggerOptions{
			Key:  "userID",
			Data: userID,
		}, logger.LoggerOptions{
			Key:  "count",
			Data: count,
		})
		return false
	}
	return true
}

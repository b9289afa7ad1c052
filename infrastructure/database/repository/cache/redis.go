package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "mruput.io/infrastructure/database/connection/cache"
	"mruput.io/infrastructure/logger"
)

// Cache is the shared repository over the process redis connection.
var Cache = &RedisRepository{}

type RedisRepository struct {
	Client *redis.Client
}

func (redisRepo *RedisRepository) preRequest() bool {
	if redisRepo.Client == nil {
		client, err := redisClient.GetInstance()
		if err != nil || client.Client == nil {
			return false
		}
		redisRepo.Client = client.Client
		logger.Info("redis repository initialisation complete")
	}
	return true
}

func (redisRepo *RedisRepository) CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool {
	if !redisRepo.preRequest() {
		return false
	}
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

func (redisRepo *RedisRepository) FindOne(ctx context.Context, key string) *string {
	raw := redisRepo.FindOneByteArray(ctx, key)
	if raw == nil {
		return nil
	}
	result := string(*raw)
	return &result
}

// FindOneByteArray returns nil on a miss or when redis is unreachable.
func (redisRepo *RedisRepository) FindOneByteArray(ctx context.Context, key string) *[]byte {
	if !redisRepo.preRequest() {
		return nil
	}
	result, err := redisRepo.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		logger.Error("redis error occured while running FindOneByteArray", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

func (redisRepo *RedisRepository) DeleteOne(ctx context.Context, key string) bool {
	if !redisRepo.preRequest() {
		return false
	}
	result, err := redisRepo.Client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return result == 1
}

// IncrementField bumps a counter and starts its ttl on first use.
func (redisRepo *RedisRepository) IncrementField(ctx context.Context, key string, amount int64, ttl time.Duration) int64 {
	if !redisRepo.preRequest() {
		return 0
	}
	result, err := redisRepo.Client.IncrBy(ctx, key, amount).Result()
	if err != nil {
		logger.Error("redis error occured while running IncrementField", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0
	}
	if result == amount && ttl > 0 {
		redisRepo.Client.Expire(ctx, key, ttl)
	}
	return result
}

package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mruput.io/infrastructure/logger"
)

type RedisConnection struct {
	Client *redis.Client
}

var (
	instance     *RedisConnection
	instanceOnce sync.Once
	instanceErr  error
)

func ConnectToCache() {
	if _, err := GetInstance(); err != nil {
		logger.Warning("could not connect to redis", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

// GetInstance returns the shared redis connection, dialing it on first use.
func GetInstance() (*RedisConnection, error) {
	instanceOnce.Do(func() {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			instanceErr = errors.New("REDIS_ADDR missing")
			instance = &RedisConnection{}
			return
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			PoolSize: 10,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		instance = &RedisConnection{Client: client}
		if err := client.Ping(ctx).Err(); err != nil {
			instanceErr = err
			return
		}
		logger.Info("connected to redis successfully")
	})
	return instance, instanceErr
}

package database

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"k9medics_backend/internals/configs"
)

func ConnectRedis(cfg configs.CheckoutConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("[INFO] Connected to Redis")
	return rdb, nil
}

package database

import (
	"context"
	"fmt"
	"log"
	"pyland_backend/internal/config"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 通知队列和审核队列 pub/sub 共用一个客户端。
// 连不上时调用方降级运行，不算致命错误。
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}

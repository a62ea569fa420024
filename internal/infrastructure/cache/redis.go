package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"gameportal/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewRedis 建立 Redis 连接（会话存储用）
// 客户端由 main 构造后注入各处，不放包级全局变量
func NewRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("连接 Redis 失败: %v", err)
	}

	log.Println("Redis 连接成功")
	return client
}

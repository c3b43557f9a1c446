package revoke

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store 已登出令牌的吊销表 - 以jti为键写入Redis，TTL取令牌剩余有效期
type Store struct {
	client *redis.Client
	prefix string
}

// Config Redis连接配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewStore 创建吊销表，连接失败返回错误
func NewStore(cfg *Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %v", err)
	}

	return &Store{client: client, prefix: cfg.Prefix}, nil
}

func (s *Store) key(jti string) string {
	return s.prefix + ":" + jti
}

// Revoke 吊销令牌，ttl之后键自动过期（与令牌过期同步）
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(jti), 1, ttl).Err()
}

// IsRevoked 检查令牌是否已被吊销
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 关闭Redis连接
func (s *Store) Close() error {
	return s.client.Close()
}

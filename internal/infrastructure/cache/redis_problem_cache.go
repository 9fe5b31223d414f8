package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"nofap-bot/internal/domain/port"
)

const problemSetKey = "nofap:problem_users"

// RedisProblemCache кэш проблемных участников в Redis.
// Переживает рестарт бота: помеченные на прошлом запуске остаются
// пропущенными до плановой очистки.
type RedisProblemCache struct {
	client *redis.Client
}

// NewRedisProblemCache подключается к Redis и проверяет доступность
func NewRedisProblemCache(ctx context.Context, addr, password string, db int) (*RedisProblemCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisProblemCache{client: client}, nil
}

// Add помечает участника проблемным
func (c *RedisProblemCache) Add(ctx context.Context, uid int64) error {
	return c.client.SAdd(ctx, problemSetKey, strconv.FormatInt(uid, 10)).Err()
}

// Has проверяет, помечен ли участник.
// Ошибка Redis трактуется как отсутствие пометки.
func (c *RedisProblemCache) Has(ctx context.Context, uid int64) bool {
	ok, err := c.client.SIsMember(ctx, problemSetKey, strconv.FormatInt(uid, 10)).Result()
	if err != nil {
		return false
	}
	return ok
}

// Clear снимает все пометки
func (c *RedisProblemCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, problemSetKey).Err()
}

// Close закрывает подключение
func (c *RedisProblemCache) Close() error {
	return c.client.Close()
}

var _ port.ProblemCache = (*RedisProblemCache)(nil)

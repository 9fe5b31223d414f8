package cache

import (
	"context"
	"sync"

	"nofap-bot/internal/domain/port"
)

// MemoryProblemCache кэш проблемных участников в памяти процесса
type MemoryProblemCache struct {
	mu   sync.RWMutex
	uids map[int64]struct{}
}

// NewMemoryProblemCache создаёт пустой кэш
func NewMemoryProblemCache() *MemoryProblemCache {
	return &MemoryProblemCache{uids: make(map[int64]struct{})}
}

// Add помечает участника проблемным
func (c *MemoryProblemCache) Add(_ context.Context, uid int64) error {
	c.mu.Lock()
	c.uids[uid] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Has проверяет, помечен ли участник
func (c *MemoryProblemCache) Has(_ context.Context, uid int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.uids[uid]
	return ok
}

// Clear снимает все пометки
func (c *MemoryProblemCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.uids = make(map[int64]struct{})
	c.mu.Unlock()
	return nil
}

var _ port.ProblemCache = (*MemoryProblemCache)(nil)

package app

import (
	"context"
	"sync"

	"nofap-bot/internal/domain/entity"
)

// forEachLimited обходит участников параллельно, не более limit
// одновременно. Сбой обработки одного участника не влияет на
// остальных; порядок обхода не гарантируется.
func forEachLimited(ctx context.Context, users []*entity.UserStat, limit int, fn func(ctx context.Context, u *entity.UserStat)) {
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for _, u := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(u *entity.UserStat) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, u)
		}(u)
	}
	wg.Wait()
}

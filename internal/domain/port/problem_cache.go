package port

import "context"

// ProblemCache кэш участников, до которых сейчас не достучаться.
// Обход рейтинга пропускает таких, отдельная задача очищает кэш по расписанию.
type ProblemCache interface {
	// Add помечает участника проблемным
	Add(ctx context.Context, uid int64) error

	// Has проверяет, помечен ли участник
	Has(ctx context.Context, uid int64) bool

	// Clear снимает все пометки
	Clear(ctx context.Context) error
}

// Package cache кэширует число активных записей на семинары для экранов
// каталога. Команды всегда считают записи в своей транзакции и кэш не читают.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL время жизни значения, если в конфиге не задано иное.
const DefaultTTL = 30 * time.Second

type CountCache interface {
	Get(ctx context.Context, seminarID uuid.UUID) (int, bool)
	Set(ctx context.Context, seminarID uuid.UUID, count int)
	Invalidate(ctx context.Context, seminarID uuid.UUID)
}

func countKey(seminarID uuid.UUID) string {
	return "seminar:" + seminarID.String() + ":enrollment_count"
}

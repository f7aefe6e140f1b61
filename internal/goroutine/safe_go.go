package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/okalab/okalab-backend/internal/logger"
)

// Recover логирует panic со стеком. Вызывается через defer.
func Recover(where string) {
	if r := recover(); r != nil {
		logger.Log.WithFields(map[string]interface{}{
			"where": where,
			"stack": string(debug.Stack()),
		}).Errorf("panic recovered: %v", r)
	}
}

// SafeGo запускает горутину с обработкой panic
func SafeGo(where string, fn func()) {
	go func() {
		defer Recover(where)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func SafeGoWithContext(ctx context.Context, where string, fn func(context.Context)) {
	go func() {
		defer Recover(where)
		fn(ctx)
	}()
}

package authclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Mutombe/silver-carbon/internal/metrics"
)

// Invalidator завершает сессию после неустранимого сбоя аутентификации:
// очищает хранилище и оповещает подписчиков (переход UI на страницу входа).
// Повторный вызов без сессии ничего не делает.
type Invalidator struct {
	store   TokenStore
	log     *slog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	listeners []func(ctx context.Context, reason error)
}

func NewInvalidator(store TokenStore, log *slog.Logger, m *metrics.Metrics) *Invalidator {
	if log == nil {
		log = slog.Default()
	}

	return &Invalidator{store: store, log: log, metrics: m}
}

// OnInvalidate регистрирует подписчика. Подписчики вызываются синхронно,
// вне блокировки, в порядке регистрации.
func (i *Invalidator) OnInvalidate(fn func(ctx context.Context, reason error)) {
	i.mu.Lock()
	i.listeners = append(i.listeners, fn)
	i.mu.Unlock()
}

// Invalidate очищает хранилище. Подписчики оповещаются, только если сессия была.
func (i *Invalidator) Invalidate(ctx context.Context, reason error) error {
	const op = "authclient.Invalidator.Invalidate"

	i.mu.Lock()
	_, had, getErr := i.store.Get(ctx)
	if getErr == nil && !had {
		i.mu.Unlock()
		return nil
	}

	if err := i.store.Clear(ctx); err != nil {
		i.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	listeners := append([]func(context.Context, error){}, i.listeners...)
	i.mu.Unlock()

	i.metrics.Invalidated()

	attrs := []any{}
	if reason != nil {
		attrs = append(attrs, slog.String("reason", reason.Error()))
	}
	i.log.WarnContext(ctx, "session_invalidated", attrs...)

	for _, fn := range listeners {
		fn(ctx, reason)
	}

	return nil
}

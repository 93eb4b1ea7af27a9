package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event — любое событие в системе.
type Event interface {
	Name() string
}

// Listener — обработчик событий.
type Listener func(ctx context.Context, event Event) error

// Bus — внутрипроцессная шина событий. Publish не ждет обработчиков:
// решение, породившее событие, уже принято.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на событие по имени.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish вызывает всех подписчиков в отдельных горутинах (fire-and-forget).
// Ошибки обработчиков логируются, но не возвращаются публикующему.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventName := event.Name()
	for _, listener := range b.listeners[eventName] {
		go func(l Listener) {
			// Таймаут, чтобы обработчик не завис навсегда.
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

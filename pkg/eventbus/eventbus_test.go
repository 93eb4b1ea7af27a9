package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New(zap.NewNop())

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)

	handler := func(id string) Listener {
		return func(_ context.Context, event Event) error {
			mu.Lock()
			got = append(got, id+":"+event.Name())
			mu.Unlock()
			done <- struct{}{}
			return nil
		}
	}
	bus.Subscribe("order.status.changed", handler("a"))
	bus.Subscribe("order.status.changed", handler("b"))

	bus.Publish(context.Background(), testEvent{name: "order.status.changed"})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("обработчик не был вызван")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a:order.status.changed", "b:order.status.changed"}, got)
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := New(zap.NewNop())
	called := make(chan struct{}, 1)
	bus.Subscribe("other.event", func(context.Context, Event) error {
		called <- struct{}{}
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "order.status.changed"})

	select {
	case <-called:
		t.Fatal("слушатель чужого события не должен вызываться")
	case <-time.After(100 * time.Millisecond):
	}
}

// Package eventbus fans validated game events out to any number of
// observers (HUD components, the progress reporter, telemetry) without
// each needing to own the bridge connection.
package eventbus

import (
	"sync"

	"shelley-server/internal/protocol"

	"go.uber.org/zap"
)

// Bus is a process-wide synchronous publish/subscribe registry. Owned by
// main and injected; never a package global.
type Bus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(protocol.Event)
	order       []int
	logger      *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]func(protocol.Event)),
		logger:      logger.Named("EventBus"),
	}
}

// Subscribe registers fn and returns its disposer. Unsubscribing during a
// Publish iteration is safe and does not affect other subscribers.
func (b *Bus) Subscribe(fn func(protocol.Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
		for i, existing := range b.order {
			if existing == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers event to every current subscriber in registration
// order. The subscriber list is copied before iterating, and a panicking
// subscriber is isolated so the rest still receive the event.
func (b *Bus) Publish(event protocol.Event) {
	b.mu.RLock()
	fns := make([]func(protocol.Event), 0, len(b.order))
	for _, id := range b.order {
		if fn, ok := b.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		b.dispatch(fn, event)
	}
}

func (b *Bus) dispatch(fn func(protocol.Event), event protocol.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event subscriber panicked",
				zap.String("eventType", event.EventType()),
				zap.Any("panic", r))
		}
	}()
	fn(event)
}

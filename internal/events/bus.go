// Package events carries the payload-free "cart changed" signal to every mounted view.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/pkg/logger"
)

// Bus is a synchronous publish/subscribe channel. Publish runs every subscriber on the
// caller's goroutine before returning; subscribers must re-read the cart themselves.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func()
	logg   *logger.Logger
}

// NewBus returns an empty bus. logg may be nil.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{subs: make(map[uint64]func()), logg: logg}
}

// Subscribe registers fn and returns an idempotent unsubscribe func.
func (b *Bus) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish notifies the subscribers registered at the moment of the call.
func (b *Bus) Publish() {
	b.mu.RLock()
	snapshot := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		b.deliver(fn)
	}
}

// Subscribers reports how many subscribers are currently registered.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) deliver(fn func()) {
	defer func() {
		if rec := recover(); rec != nil && b.logg != nil {
			ctx := b.logg.WithField(context.Background(), "panic", rec)
			b.logg.Error(ctx, "cart.event.subscriber_panic", fmt.Errorf("panic: %v", rec))
		}
	}()
	fn()
}

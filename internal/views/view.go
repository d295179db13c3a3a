// Package views holds the cart surfaces that stay in sync through the event bus.
// Each view keeps its own copy of the cart and re-reads the repository whenever the
// bus signals a change.
package views

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
)

// Subscriber is the part of the event bus a view needs.
type Subscriber interface {
	Subscribe(fn func()) func()
}

type mount struct {
	repo        cart.Repository
	mu          sync.RWMutex
	current     cart.Cart
	closed      bool
	unsubscribe func()
	changes     chan struct{}
}

func newMount(ctx context.Context, repo cart.Repository, bus Subscriber) *mount {
	m := &mount{
		repo:    repo,
		changes: make(chan struct{}, 1),
	}
	m.current = repo.Load(ctx)
	// The reload runs on the publisher's goroutine, after the write it announces.
	m.unsubscribe = bus.Subscribe(func() {
		m.reload(context.WithoutCancel(ctx))
	})
	return m
}

func (m *mount) reload(ctx context.Context) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return
	}

	next := m.repo.Load(ctx)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.current = next
	m.mu.Unlock()

	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *mount) cart() cart.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Changes fires (coalesced) after each refresh.
func (m *mount) Changes() <-chan struct{} {
	return m.changes
}

// Close unmounts the view. Safe to call more than once.
func (m *mount) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.unsubscribe()
}

// Closed reports whether the view was unmounted.
func (m *mount) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/internal/storage"
)

func TestWithEventsPublishesAfterWrite(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(nil)
	repo := WithEvents(NewMemoryRepository(), bus)

	var seen []int
	bus.Subscribe(func() {
		seen = append(seen, repo.Load(ctx).ItemCount())
	})

	if _, err := repo.Add(ctx, honey(), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := repo.UpdateQuantity(ctx, 7, 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	want := []int{2, 0, 0}
	if len(seen) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d saw item count %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestWithEventsSkipsPublishOnFailedWrite(t *testing.T) {
	bus := events.NewBus(nil)
	store := failingStore{Store: storage.NewMemory(), setErr: errors.New("down")}
	repo := WithEvents(NewRepository(store, "s"), bus)

	calls := 0
	bus.Subscribe(func() { calls++ })

	if _, err := repo.Add(context.Background(), honey(), 1); err == nil {
		t.Fatalf("expected write error")
	}
	if calls != 0 {
		t.Fatalf("expected no notification, got %d", calls)
	}
}

func TestWithEventsNilBusReturnsRepo(t *testing.T) {
	repo := NewMemoryRepository()
	if WithEvents(repo, nil) != repo {
		t.Fatalf("expected the undecorated repository")
	}
}

func TestWithEventsSkipsPublishOnRejectedQuantity(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(nil)
	repo := WithEvents(NewMemoryRepository(), bus)

	published := 0
	bus.Subscribe(func() { published++ })

	if _, err := repo.Add(ctx, honey(), MaxLineQuantity+1); err == nil {
		t.Fatalf("expected oversized add to fail")
	}
	if published != 0 {
		t.Fatalf("expected no publish, got %d", published)
	}
}

package views

import (
	"context"

	"github.com/angelmondragon/storefront/internal/cart"
)

// Badge is the always-mounted header counter.
type Badge struct {
	*mount
}

// BadgeSnapshot is what the header renders.
type BadgeSnapshot struct {
	ItemCount int `json:"item_count"`
}

func NewBadge(ctx context.Context, repo cart.Repository, bus Subscriber) *Badge {
	return &Badge{mount: newMount(ctx, repo, bus)}
}

func (b *Badge) Snapshot() BadgeSnapshot {
	return BadgeSnapshot{ItemCount: b.cart().ItemCount()}
}

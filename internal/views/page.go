package views

import (
	"context"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

// Page is the standalone cart page.
type Page struct {
	*mount
}

// PageSnapshot is the full cart page model.
type PageSnapshot struct {
	Lines     []LineView      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Empty     bool            `json:"empty"`
}

func NewPage(ctx context.Context, repo cart.Repository, bus Subscriber) *Page {
	return &Page{mount: newMount(ctx, repo, bus)}
}

func (p *Page) Snapshot() PageSnapshot {
	return PageFromCart(p.cart())
}

// PageFromCart renders c without mounting a view.
func PageFromCart(c cart.Cart) PageSnapshot {
	return PageSnapshot{
		Lines:     lineViews(c),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		Empty:     c.IsEmpty(),
	}
}

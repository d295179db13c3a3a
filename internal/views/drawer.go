package views

import (
	"context"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/shopspring/decimal"
)

// Drawer is the slide-over cart opened from the header.
type Drawer struct {
	*mount
}

// LineView is a rendered cart line.
type LineView struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Image       string          `json:"image,omitempty"`
	Ingredients []string        `json:"ingredients,omitempty"`
}

// DrawerSnapshot lists lines with their running total.
type DrawerSnapshot struct {
	Lines []LineView      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func NewDrawer(ctx context.Context, repo cart.Repository, bus Subscriber) *Drawer {
	return &Drawer{mount: newMount(ctx, repo, bus)}
}

func (d *Drawer) Snapshot() DrawerSnapshot {
	c := d.cart()
	return DrawerSnapshot{Lines: lineViews(c), Total: c.Total()}
}

func lineViews(c cart.Cart) []LineView {
	out := make([]LineView, 0, len(c.Lines))
	for _, line := range c.Lines {
		out = append(out, LineView{
			ProductID:   line.ProductID,
			Name:        line.DisplayName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal(),
			Image:       line.ImageRef,
			Ingredients: append([]string(nil), line.Ingredients...),
		})
	}
	return out
}

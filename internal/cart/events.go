package cart

import "context"

// Publisher is the "cart changed" signal sink.
type Publisher interface {
	Publish()
}

type notifying struct {
	Repository
	bus Publisher
}

// WithEvents wraps repo so every successful mutation is followed by exactly one
// Publish on the calling goroutine, after the write has completed. Failed writes
// publish nothing.
func WithEvents(repo Repository, bus Publisher) Repository {
	if bus == nil {
		return repo
	}
	return &notifying{Repository: repo, bus: bus}
}

func (n *notifying) Add(ctx context.Context, product Product, qty int) (Cart, error) {
	c, err := n.Repository.Add(ctx, product, qty)
	return c, n.after(err)
}

func (n *notifying) UpdateQuantity(ctx context.Context, productID int64, qty int) (Cart, error) {
	c, err := n.Repository.UpdateQuantity(ctx, productID, qty)
	return c, n.after(err)
}

func (n *notifying) Remove(ctx context.Context, productID int64) (Cart, error) {
	c, err := n.Repository.Remove(ctx, productID)
	return c, n.after(err)
}

func (n *notifying) Clear(ctx context.Context) error {
	return n.after(n.Repository.Clear(ctx))
}

func (n *notifying) after(err error) error {
	if err == nil {
		n.bus.Publish()
	}
	return err
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/internal/storage"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// DefaultKey is the well-known name the cart is stored under inside a scope.
const DefaultKey = "cart"

// Repository owns the persisted cart for one scope. Mutations are durably written
// before they return.
type Repository interface {
	Load(ctx context.Context) Cart
	Add(ctx context.Context, product Product, qty int) (Cart, error)
	UpdateQuantity(ctx context.Context, productID int64, qty int) (Cart, error)
	Remove(ctx context.Context, productID int64) (Cart, error)
	Clear(ctx context.Context) error
	Total(ctx context.Context) decimal.Decimal
	ItemCount(ctx context.Context) int
}

// Option customises a repository.
type Option func(*repository)

// WithLogger attaches a logger for degraded loads and write failures.
func WithLogger(logg *logger.Logger) Option {
	return func(r *repository) {
		r.logg = logg
	}
}

// WithMetrics attaches cart counters.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(r *repository) {
		r.metrics = m
	}
}

// WithKey overrides the value name used inside the scope.
func WithKey(name string) Option {
	return func(r *repository) {
		if name != "" {
			r.name = name
		}
	}
}

type repository struct {
	mu      sync.Mutex
	store   storage.Store
	scope   string
	name    string
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewRepository builds a repository persisting to store under scope.
func NewRepository(store storage.Store, scope string, opts ...Option) Repository {
	r := &repository{
		store: store,
		scope: scope,
		name:  DefaultKey,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewMemoryRepository returns a repository over a private in-memory store.
func NewMemoryRepository(opts ...Option) Repository {
	return NewRepository(storage.NewMemory(), "local", opts...)
}

func (r *repository) key() string {
	return storage.ScopedKey(r.scope, r.name)
}

func (r *repository) Load(ctx context.Context) Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx)
}

func (r *repository) Add(ctx context.Context, product Product, qty int) (Cart, error) {
	if qty < 1 {
		qty = 1
	}
	if qty > MaxLineQuantity {
		return Cart{}, quantityTooLarge()
	}
	return r.mutate(ctx, "add", func(c *Cart) error {
		if i := c.indexOf(product.ID); i >= 0 {
			if c.Lines[i].Quantity > MaxLineQuantity-qty {
				return quantityTooLarge()
			}
			c.Lines[i].Quantity += qty
			return nil
		}
		c.Lines = append(c.Lines, Line{
			ProductID:   product.ID,
			DisplayName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
			ImageRef:    product.Image,
			Ingredients: append([]string(nil), product.Ingredients...),
		})
		return nil
	})
}

func (r *repository) UpdateQuantity(ctx context.Context, productID int64, qty int) (Cart, error) {
	if qty < 1 {
		return r.Remove(ctx, productID)
	}
	if qty > MaxLineQuantity {
		return Cart{}, quantityTooLarge()
	}
	return r.mutate(ctx, "update_quantity", func(c *Cart) error {
		if i := c.indexOf(productID); i >= 0 {
			c.Lines[i].Quantity = qty
		}
		return nil
	})
}

func (r *repository) Remove(ctx context.Context, productID int64) (Cart, error) {
	return r.mutate(ctx, "remove", func(c *Cart) error {
		if i := c.indexOf(productID); i >= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return nil
	})
}

func (r *repository) Clear(ctx context.Context) error {
	_, err := r.mutate(ctx, "clear", func(c *Cart) error {
		c.Lines = nil
		return nil
	})
	return err
}

func (r *repository) Total(ctx context.Context) decimal.Decimal {
	return r.Load(ctx).Total()
}

func (r *repository) ItemCount(ctx context.Context) int {
	return r.Load(ctx).ItemCount()
}

// mutate applies a change and persists it. A change that fails is neither written nor counted.
func (r *repository) mutate(ctx context.Context, op string, apply func(*Cart) error) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.read(ctx)
	if err := apply(&current); err != nil {
		return Cart{}, err
	}

	payload, err := encode(current)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := r.store.Set(ctx, r.key(), payload); err != nil {
		if r.logg != nil {
			r.logg.Error(r.logg.WithField(ctx, "op", op), "cart.write.failed", err)
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart could not be saved")
	}
	r.metrics.IncMutation(op)
	return current.clone(), nil
}

func quantityTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity)).WithDetails(map[string]string{
		"quantity": fmt.Sprintf("must be at most %d", MaxLineQuantity),
	})
}

// read must be called with mu held. It never fails: unreadable state is an empty cart.
func (r *repository) read(ctx context.Context) Cart {
	data, err := r.store.Get(ctx, r.key())
	if errors.Is(err, storage.ErrNotFound) || (err == nil && len(data) == 0) {
		return Cart{}
	}
	if err != nil {
		r.degraded(ctx, "storage unavailable", err)
		return Cart{}
	}
	lines, err := decode(data)
	if err != nil {
		r.degraded(ctx, "malformed payload", err)
		return Cart{}
	}
	lines, changed := normalize(lines)
	if changed && r.logg != nil {
		r.logg.Warn(r.logg.WithField(ctx, "scope_key", r.scope), "cart.load.normalized")
	}
	return Cart{Lines: lines}
}

func (r *repository) degraded(ctx context.Context, reason string, err error) {
	r.metrics.IncDegradedLoad()
	if r.logg == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"reason":    reason,
		"error":     err.Error(),
		"scope_key": r.scope,
	})
	r.logg.Warn(ctx, "cart.load.degraded")
}

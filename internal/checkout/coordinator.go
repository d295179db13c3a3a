package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/orderapi"
	"github.com/shopspring/decimal"
)

const (
	defaultSubmitTimeout = 15 * time.Second

	msgUnauthorized = "please log in again or continue as guest"
	msgFailed       = "we could not place your order, please try again"
)

// State is the coordinator's position in a submission attempt.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Outcome labels recorded per attempt.
const (
	OutcomeSucceeded        = "succeeded"
	OutcomeValidationFailed = "validation_failed"
	OutcomeStockConflict    = "stock_conflict"
	OutcomeUnauthorized     = "unauthorized"
	OutcomeFailed           = "failed"
	OutcomeInFlight         = "in_flight"
)

// OrderCreator issues the order request.
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, req orderapi.CreateOrderRequest) (*orderapi.Order, error)
}

// Identity is the optional authenticated customer. A zero Identity is a guest.
type Identity struct {
	Token  string
	UserID *int64
}

// Receipt summarises an accepted order.
type Receipt struct {
	OrderID   int64             `json:"order_id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"item_count"`
}

// StockConflictDetail is surfaced with STOCK_CONFLICT errors.
type StockConflictDetail struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	AvailableStock int    `json:"available_stock"`
}

// Option customises a Coordinator.
type Option func(*Coordinator)

func WithLogger(logg *logger.Logger) Option {
	return func(c *Coordinator) {
		c.logg = logg
	}
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithPaymentMethod overrides the deferred payment method sent with orders.
func WithPaymentMethod(method enums.PaymentMethod) Option {
	return func(c *Coordinator) {
		if method != "" {
			c.paymentMethod = method
		}
	}
}

// WithSubmitTimeout bounds the order call. The call is not cancelled by the caller.
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Coordinator drives one submission at a time against a cart repository.
type Coordinator struct {
	repo          cart.Repository
	orders        OrderCreator
	state         atomic.Int32
	inFlight      atomic.Bool
	paymentMethod enums.PaymentMethod
	timeout       time.Duration
	logg          *logger.Logger
	metrics       *metrics.CheckoutMetrics
}

// NewCoordinator builds a coordinator. repo should publish cart changes (see cart.WithEvents).
func NewCoordinator(repo cart.Repository, orders OrderCreator, opts ...Option) (*Coordinator, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	c := &Coordinator{
		repo:          repo,
		orders:        orders,
		paymentMethod: enums.PaymentMethodCashOnDelivery,
		timeout:       defaultSubmitTimeout,
		logg:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logg == nil {
		c.logg = logger.Nop()
	}
	return c, nil
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// InFlight reports whether a submission is running.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// Submit validates the form and cart, then places the order with exactly one
// call. While a submission runs, further calls fail fast with SUBMISSION_IN_FLIGHT
// and touch nothing.
func (c *Coordinator) Submit(ctx context.Context, form *Form, identity Identity) (*Receipt, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.metrics.Observe(OutcomeInFlight, 0)
		return nil, pkgerrors.New(pkgerrors.CodeSubmissionActive, "an order submission is already in progress")
	}
	defer func() {
		c.state.Store(int32(StateIdle))
		c.inFlight.Store(false)
	}()

	started := time.Now()
	// Everything after the gate outlives the caller: a late response may still repair the cart.
	ctx = context.WithoutCancel(ctx)
	if identity.UserID != nil {
		ctx = c.logg.WithUserID(ctx, *identity.UserID)
	}

	c.state.Store(int32(StateValidating))
	if form == nil {
		form = NewForm(CustomerInfo{})
	}
	info := form.Info().Trimmed()
	current := c.repo.Load(ctx)
	if err := validateSubmission(info, current); err != nil {
		c.logg.Info(c.logg.WithField(ctx, "error", err.Error()), "checkout.validation_failed")
		c.metrics.Observe(OutcomeValidationFailed, time.Since(started))
		return nil, err
	}

	c.state.Store(int32(StateSubmitting))
	req := buildRequest(info, current, identity, c.paymentMethod)
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	order, err := c.orders.CreateOrder(callCtx, identity.Token, req)
	cancel()
	if err != nil {
		return nil, c.fail(ctx, current, err, started)
	}

	if clearErr := c.repo.Clear(ctx); clearErr != nil {
		c.logg.Error(c.logg.WithOrderID(ctx, order.ID), "checkout.clear_failed", clearErr)
	}
	form.ResetTransient()

	receipt := &Receipt{
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     current.Total(),
		ItemCount: current.ItemCount(),
	}
	c.logg.Info(c.logg.WithFields(c.logg.WithOrderID(ctx, order.ID), map[string]any{
		"item_count": receipt.ItemCount,
		"total":      receipt.Total.String(),
	}), "checkout.succeeded")
	c.metrics.Observe(OutcomeSucceeded, time.Since(started))
	return receipt, nil
}

func (c *Coordinator) fail(ctx context.Context, current cart.Cart, err error, started time.Time) error {
	var conflict *orderapi.StockConflictError
	switch {
	case errors.As(err, &conflict):
		c.metrics.Observe(OutcomeStockConflict, time.Since(started))
		return c.repairStock(ctx, current, conflict)
	case errors.Is(err, orderapi.ErrUnauthorized):
		c.logg.Warn(ctx, "checkout.unauthorized")
		c.metrics.Observe(OutcomeUnauthorized, time.Since(started))
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgUnauthorized)
	default:
		c.logg.Error(ctx, "checkout.failed", err)
		c.metrics.Observe(OutcomeFailed, time.Since(started))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgFailed)
	}
}

func (c *Coordinator) repairStock(ctx context.Context, current cart.Cart, conflict *orderapi.StockConflictError) error {
	name := conflict.ProductName
	if line, ok := current.Line(conflict.ProductID); ok && name == "" {
		name = line.DisplayName
	}
	if name == "" {
		name = fmt.Sprintf("product %d", conflict.ProductID)
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"product_id":      conflict.ProductID,
		"available_stock": conflict.AvailableStock,
	})
	if _, err := c.repo.UpdateQuantity(ctx, conflict.ProductID, conflict.AvailableStock); err != nil {
		c.logg.Error(ctx, "checkout.stock_repair_failed", err)
	} else {
		c.logg.Warn(ctx, "checkout.stock_conflict")
	}

	message := fmt.Sprintf("only %d of %s available; your cart was updated", conflict.AvailableStock, name)
	if conflict.AvailableStock == 0 {
		message = fmt.Sprintf("%s is out of stock and was removed from your cart", name)
	}
	return pkgerrors.Wrap(pkgerrors.CodeStockConflict, conflict, message).WithDetails(StockConflictDetail{
		ProductID:      conflict.ProductID,
		ProductName:    name,
		AvailableStock: conflict.AvailableStock,
	})
}

func validateSubmission(info CustomerInfo, current cart.Cart) error {
	if current.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").WithDetails(map[string]string{"cart": "is empty"})
	}
	return info.Validate()
}

func buildRequest(info CustomerInfo, current cart.Cart, identity Identity, paymentMethod enums.PaymentMethod) orderapi.CreateOrderRequest {
	items := make([]orderapi.OrderItem, 0, len(current.Lines))
	for _, line := range current.Lines {
		items = append(items, orderapi.OrderItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Subtotal(),
		})
	}
	address := info.ShippingAddress()
	return orderapi.CreateOrderRequest{
		UserID:          identity.UserID,
		CustomerName:    info.Name,
		CustomerPhone:   info.Phone,
		ShippingAddress: address,
		BillingAddress:  address,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
		Notes:           info.Note,
		Items:           items,
	}
}

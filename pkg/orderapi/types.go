package orderapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the body of POST /orders/create.
type CreateOrderRequest struct {
	UserID          *int64              `json:"user_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	ShippingAddress string              `json:"shipping_address"`
	BillingAddress  string              `json:"billing_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Notes           string              `json:"notes"`
	Items           []OrderItem         `json:"items"`
}

// OrderItem is a line of an order request.
type OrderItem struct {
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Order is an order as returned by the service.
type Order struct {
	ID              int64               `json:"id"`
	Status          enums.OrderStatus   `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
	Items           []OrderLine         `json:"items,omitempty"`
}

// OrderLine is a line of a stored order.
type OrderLine struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Product    *ProductRef     `json:"product,omitempty"`
}

// ProductRef is the product summary embedded in order lines.
type ProductRef struct {
	ProductName string `json:"product_name"`
	Image       string `json:"image,omitempty"`
}

// Cancellable reports whether the service still accepts a cancellation.
func (o Order) Cancellable() bool {
	return o.Status.Cancellable()
}

// ErrUnauthorized is returned when the service rejects the credentials (HTTP 401).
var ErrUnauthorized = errors.New("order api: unauthorized")

// StockConflictError is the structured 422 returned when stock is short.
type StockConflictError struct {
	ProductID      int64
	ProductName    string
	AvailableStock int
	Message        string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("order api: stock conflict for product %d (available %d)", e.ProductID, e.AvailableStock)
}

// RequestError covers transport failures and unexpected responses.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("order api: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("order api: status %d: %v", e.StatusCode, e.Err)
	case e.Message != "":
		return fmt.Sprintf("order api: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("order api: status %d", e.StatusCode)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

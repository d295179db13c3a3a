// Package orders exposes the customer's order history.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/orderapi"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

type orderClient interface {
	ListOrders(ctx context.Context, token string) ([]orderapi.Order, error)
	CancelOrder(ctx context.Context, token string, orderID int64) error
}

// Page is one newest-first slice of the order history.
type Page struct {
	Orders     []orderapi.Order `json:"orders"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Service lists and cancels the caller's orders.
type Service interface {
	List(ctx context.Context, identity checkout.Identity, params pagination.Params) (*Page, error)
	Cancel(ctx context.Context, identity checkout.Identity, orderID int64) (*orderapi.Order, error)
}

type service struct {
	client orderClient
	logg   *logger.Logger
}

// NewService builds the order history service.
func NewService(client orderClient, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("order client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: client, logg: logg}, nil
}

func (s *service) List(ctx context.Context, identity checkout.Identity, params pagination.Params) (*Page, error) {
	token, err := requireToken(identity)
	if err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.client.ListOrders(ctx, token)
	if err != nil {
		return nil, s.translate(ctx, err, "orders.list.failed")
	}
	return paginate(list, cursor, pagination.NormalizeLimit(params.Limit)), nil
}

// paginate orders the history newest first and cuts the page after cursor.
func paginate(list []orderapi.Order, cursor *pagination.Cursor, limit int) *Page {
	sort.SliceStable(list, func(i, j int) bool {
		ti, tj := createdAt(list[i]), createdAt(list[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return list[i].ID > list[j].ID
	})

	page := &Page{Orders: make([]orderapi.Order, 0, limit)}
	for _, order := range list {
		if cursor != nil && !cursor.Before(createdAt(order), order.ID) {
			continue
		}
		if len(page.Orders) == limit {
			last := page.Orders[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: createdAt(last), ID: last.ID})
			break
		}
		page.Orders = append(page.Orders, order)
	}
	return page
}

func createdAt(o orderapi.Order) time.Time {
	if o.CreatedAt == nil {
		return time.Time{}
	}
	return *o.CreatedAt
}

func (s *service) Cancel(ctx context.Context, identity checkout.Identity, orderID int64) (*orderapi.Order, error) {
	token, err := requireToken(identity)
	if err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is invalid")
	}

	list, err := s.client.ListOrders(ctx, token)
	if err != nil {
		return nil, s.translate(ctx, err, "orders.cancel.lookup_failed")
	}
	var target *orderapi.Order
	for i := range list {
		if list[i].ID == orderID {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !target.Cancellable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").WithDetails(map[string]any{
			"order_id": orderID,
			"status":   target.Status,
		})
	}

	if err := s.client.CancelOrder(ctx, token, orderID); err != nil {
		return nil, s.translate(ctx, err, "orders.cancel.failed")
	}
	target.Status = enums.OrderStatusCancelled
	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "orders.cancelled")
	return target, nil
}

func (s *service) translate(ctx context.Context, err error, event string) error {
	if errors.Is(err, orderapi.ErrUnauthorized) {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "please log in again")
	}
	s.logg.Error(ctx, event, err)
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order service unavailable, please try again")
}

func requireToken(identity checkout.Identity) (string, error) {
	token := strings.TrimSpace(identity.Token)
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to view orders")
	}
	return token, nil
}

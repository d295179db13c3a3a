package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/orderapi"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

type stubClient struct {
	orders    []orderapi.Order
	listErr   error
	cancelErr error
	cancelled []int64
}

func (s *stubClient) ListOrders(context.Context, string) ([]orderapi.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]orderapi.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *stubClient) CancelOrder(_ context.Context, _ string, orderID int64) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelled = append(s.cancelled, orderID)
	return nil
}

func newService(t *testing.T, client *stubClient) Service {
	t.Helper()
	svc, err := NewService(client, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

var member = checkout.Identity{Token: "tok"}

func TestListRequiresToken(t *testing.T) {
	svc := newService(t, &stubClient{})
	_, err := svc.List(context.Background(), checkout.Identity{}, pagination.Params{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestListReturnsOrders(t *testing.T) {
	svc := newService(t, &stubClient{orders: []orderapi.Order{{ID: 1}, {ID: 2}}})
	page, err := svc.List(context.Background(), member, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Orders) != 2 || page.NextCursor != "" {
		t.Fatalf("expected 2 orders on one page, got %+v", page)
	}
	if page.Orders[0].ID != 2 {
		t.Fatalf("expected newest id first, got %d", page.Orders[0].ID)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	at := func(day int) *time.Time {
		ts := time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
		return &ts
	}
	svc := newService(t, &stubClient{orders: []orderapi.Order{
		{ID: 1, CreatedAt: at(1)},
		{ID: 3, CreatedAt: at(3)},
		{ID: 2, CreatedAt: at(2)},
		{ID: 4, CreatedAt: at(2)},
	}})

	first, err := svc.List(context.Background(), member, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Orders) != 2 || first.Orders[0].ID != 3 || first.Orders[1].ID != 4 || first.NextCursor == "" {
		t.Fatalf("unexpected first page %+v", first)
	}

	second, err := svc.List(context.Background(), member, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Orders) != 2 || second.Orders[0].ID != 2 || second.Orders[1].ID != 1 || second.NextCursor != "" {
		t.Fatalf("unexpected second page %+v", second)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := newService(t, &stubClient{})
	if _, err := svc.List(context.Background(), member, pagination.Params{Cursor: "%%"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListTranslatesErrors(t *testing.T) {
	svc := newService(t, &stubClient{listErr: orderapi.ErrUnauthorized})
	if _, err := svc.List(context.Background(), member, pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	svc = newService(t, &stubClient{listErr: errors.New("boom")})
	if _, err := svc.List(context.Background(), member, pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	client := &stubClient{orders: []orderapi.Order{{ID: 5, Status: enums.OrderStatusProcessing}}}
	svc := newService(t, client)

	order, err := svc.Cancel(context.Background(), member, 5)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", order.Status)
	}
	if len(client.cancelled) != 1 || client.cancelled[0] != 5 {
		t.Fatalf("expected one cancel call, got %v", client.cancelled)
	}
}

func TestCancelRejectsShippedOrder(t *testing.T) {
	client := &stubClient{orders: []orderapi.Order{{ID: 5, Status: enums.OrderStatusShipped}}}
	svc := newService(t, client)

	_, err := svc.Cancel(context.Background(), member, 5)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(client.cancelled) != 0 {
		t.Fatalf("no cancel call expected")
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	svc := newService(t, &stubClient{})
	if _, err := svc.Cancel(context.Background(), member, 9); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), member, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewServiceRequiresClient(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

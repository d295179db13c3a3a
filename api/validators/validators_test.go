package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type quantityBody struct {
	Quantity *int   `json:"quantity" validate:"required"`
	Note     string `json:"note" validate:"max=5"`
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"note":"too long"}`))
	var body quantityBody

	err := DecodeJSONBody(req, &body)

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["quantity"] != "is required" || details["note"] != "must be at most 5" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"quantity":1,"extra":true}`))
	var body quantityBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type nestedBody struct {
	Product struct {
		ID int64 `json:"id" validate:"gt=0"`
	} `json:"product"`
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product":{"id":0}}`))
	var body nestedBody

	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	if typed == nil {
		t.Fatalf("expected validation error")
	}
	details := typed.Details().(map[string]string)
	if details["product.id"] != "must be greater than 0" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	for _, raw := range []string{"", `{"quantity":1} {"quantity":2}`, strings.Repeat(" ", maxBodyBytes+1) + "{}"} {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(raw))
		var body quantityBody
		if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %.20q, got %v", raw, err)
		}
	}
}

func TestParsePathID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "42")
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	id, err := ParsePathID(req, "productId")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	if _, err := ParsePathID(req, "orderId"); err == nil {
		t.Fatalf("expected error for missing parameter")
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{in: "  hello  ", max: 3, want: "hel"},
		{in: "Miel d\u2019acacia", max: 6, want: "Miel d"},
		{in: "ring\x00 twice\nplease", max: 0, want: "ring twice\nplease"},
		{in: "\u00e9\u00e9\u00e9", max: 2, want: "\u00e9\u00e9"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders?limit=500&cursor=abc", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 100 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}

	params, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/orders", nil))
	if err != nil || params.Limit != 20 {
		t.Fatalf("expected default limit, got %+v %v", params, err)
	}

	if _, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/orders?limit=ten", nil)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

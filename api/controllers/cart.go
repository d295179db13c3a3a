package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/views"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// CartGet renders the cart page model.
func CartGet(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.PageFromCart(entry.Repo.Load(r.Context())))
	}
}

// CartBadge returns the header item count.
func CartBadge(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.BadgeSnapshot{ItemCount: entry.Repo.ItemCount(r.Context())})
	}
}

type addItemRequest struct {
	Product  productPayload `json:"product"`
	Quantity *int           `json:"quantity" validate:"omitempty,max=999"`
}

type productPayload struct {
	ID          int64           `json:"id" validate:"gt=0"`
	Name        string          `json:"product_name" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Ingredients []string        `json:"ingredients" validate:"omitempty,dive,max=120"`
}

// CartAddItem adds a product to the cart, merging into an existing line.
func CartAddItem(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Product.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
				"price": "must not be negative",
			}))
			return
		}

		qty := 1
		if payload.Quantity != nil {
			qty = *payload.Quantity
		}
		updated, err := entry.Repo.Add(r.Context(), cart.Product{
			ID:          payload.Product.ID,
			Name:        validators.SanitizeString(payload.Product.Name, 255),
			Price:       payload.Product.Price,
			Image:       payload.Product.Image,
			Ingredients: payload.Product.Ingredients,
		}, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.PageFromCart(updated))
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

// CartUpdateItem replaces a line quantity; quantities below one remove the line.
func CartUpdateItem(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := entry.Repo.UpdateQuantity(r.Context(), productID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.PageFromCart(updated))
	}
}

// CartRemoveItem drops a line. Unknown products are not an error.
func CartRemoveItem(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := entry.Repo.Remove(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.PageFromCart(updated))
	}
}

// CartClear empties the cart.
func CartClear(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := entry.Repo.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.PageFromCart(cart.Cart{}))
	}
}

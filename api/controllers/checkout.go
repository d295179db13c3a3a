package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const maxNoteLength = 1000

// IdentityResolver maps request credentials to a checkout identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request, scope session.Scope) (checkout.Identity, *checkout.Profile)
}

type checkoutRequest struct {
	Name    string `json:"name" validate:"max=255"`
	Phone   string `json:"phone" validate:"max=64"`
	City    string `json:"city" validate:"max=255"`
	Address string `json:"address" validate:"max=500"`
	Note    string `json:"note"`
}

// CheckoutSubmit places the scope's cart as an order. Guests may check out; a
// signed-in customer's stored profile fills any empty delivery fields.
func CheckoutSubmit(hub ScopeHub, identities IdentityResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var identity checkout.Identity
		var profile *checkout.Profile
		if identities != nil {
			identity, profile = identities.Resolve(r.Context(), r, scope)
		}

		form := checkout.NewForm(checkout.CustomerInfo{
			Name:    payload.Name,
			Phone:   payload.Phone,
			City:    payload.City,
			Address: payload.Address,
			Note:    validators.SanitizeString(payload.Note, maxNoteLength),
		})
		form.Prefill(profile)
		// The response writer is gone once this handler returns.
		defer form.Detach()

		receipt, err := entry.Coordinator.Submit(r.Context(), form, identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

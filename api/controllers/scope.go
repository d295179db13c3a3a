package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// ScopeHub hands out the per-scope cart, bus and coordinator.
type ScopeHub interface {
	Get(scope session.Scope) (*session.Entry, error)
}

func entryFor(r *http.Request, hub ScopeHub) (session.Scope, *session.Entry, error) {
	if hub == nil {
		return session.Scope{}, nil, pkgerrors.New(pkgerrors.CodeInternal, "cart hub unavailable")
	}
	scope, ok := session.ScopeFromContext(r.Context())
	if !ok {
		return session.Scope{}, nil, pkgerrors.New(pkgerrors.CodeInternal, "cart scope missing")
	}
	entry, err := hub.Get(scope)
	if err != nil {
		return scope, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assemble cart scope")
	}
	return scope, entry, nil
}

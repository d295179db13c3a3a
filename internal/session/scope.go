// Package session ties a browser's cart scope and credentials to the per-scope
// cart, event bus and checkout coordinator.
package session

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// HeaderScope lets non-browser clients carry the scope without cookies.
const HeaderScope = "X-Cart-Scope"

const maxScopeLength = 128

// Scope identifies one browsing context. Key is the storage-safe digest of Raw.
type Scope struct {
	Raw string
	Key string
}

type scopeCtxKey struct{}

// WithScope stores the scope in ctx.
func WithScope(ctx context.Context, scope Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeCtxKey{}, scope)
}

// ScopeFromContext returns the scope stored by WithScope.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeCtxKey{}).(Scope)
	return scope, ok && scope.Key != ""
}

// NewScope derives the storage key for raw.
func NewScope(raw string) Scope {
	sum := blake2b.Sum256([]byte(raw))
	return Scope{Raw: raw, Key: hex.EncodeToString(sum[:])}
}

// ResolveScope reads the scope from the request, minting one (and setting the
// cookie) when the request carries none.
func ResolveScope(w http.ResponseWriter, r *http.Request, cfg config.SessionConfig) (Scope, bool) {
	if raw := validScope(r.Header.Get(HeaderScope)); raw != "" {
		return NewScope(raw), false
	}
	if cookie, err := r.Cookie(cfg.CookieName); err == nil {
		if raw := validScope(cookie.Value); raw != "" {
			return NewScope(raw), false
		}
	}

	raw := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return NewScope(raw), true
}

func validScope(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxScopeLength {
		return ""
	}
	return value
}

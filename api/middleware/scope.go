package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Scope resolves the caller's cart scope, minting one when absent, and stores it
// in the request context.
func Scope(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, minted := session.ResolveScope(w, r, cfg)
			if minted {
				w.Header().Set(session.HeaderScope, scope.Raw)
			}

			ctx := session.WithScope(r.Context(), scope)
			if logg != nil {
				ctx = logg.WithScope(ctx, scope.Key[:12])
				if minted {
					logg.Debug(ctx, "session.scope.minted")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

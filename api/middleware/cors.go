package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", session.HeaderScope, "X-Requested-With"},
		ExposedHeaders:   []string{session.HeaderScope, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

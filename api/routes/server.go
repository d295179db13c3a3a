package routes

import (
	"context"
	"net"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// NewServer wraps handler in an http.Server whose request contexts are cancelled
// as soon as Shutdown starts, so long-lived streams end instead of holding it open.
func NewServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	server.RegisterOnShutdown(cancel)
	return server
}

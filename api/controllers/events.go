package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/views"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	cartEventName     = "cart"
	keepAliveInterval = 25 * time.Second
)

// CartEvents streams a "cart" server-sent event with the badge count on connect
// and after every change to the scope's cart.
func CartEvents(hub ScopeHub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, err := entryFor(r, hub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rc := http.NewResponseController(w)

		badge := views.NewBadge(r.Context(), entry.Repo, entry.Bus)
		defer badge.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if err := writeCartEvent(w, rc, badge.Snapshot()); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "cart.events.stream_failed", err)
			}
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-badge.Changes():
				if err := writeCartEvent(w, rc, badge.Snapshot()); err != nil {
					if logg != nil {
						logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart.events.write_failed")
					}
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}

func writeCartEvent(w http.ResponseWriter, rc *http.ResponseController, snapshot views.BadgeSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", cartEventName, payload); err != nil {
		return err
	}
	return rc.Flush()
}

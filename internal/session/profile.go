package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// DefaultProfileKey is where the storefront keeps the signed-in customer.
const DefaultProfileKey = "user"

// ProfileSource reads the stored customer profile. It never writes.
type ProfileSource struct {
	store storage.Store
	key   string
	logg  *logger.Logger
}

func NewProfileSource(store storage.Store, key string, logg *logger.Logger) *ProfileSource {
	if strings.TrimSpace(key) == "" {
		key = DefaultProfileKey
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &ProfileSource{store: store, key: key, logg: logg}
}

// Load returns the profile stored for scope, or nil when there is none or it is unreadable.
func (p *ProfileSource) Load(ctx context.Context, scope Scope) *checkout.Profile {
	if p == nil || p.store == nil {
		return nil
	}
	data, err := p.store.Get(ctx, storage.ScopedKey(scope.Key, p.key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "session.profile.unavailable")
		return nil
	}
	var profile checkout.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "session.profile.malformed")
		return nil
	}
	return &profile
}

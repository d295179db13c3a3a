package session

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// IdentityResolver turns request credentials into a checkout identity.
type IdentityResolver struct {
	cfg      config.JWTConfig
	profiles *ProfileSource
	now      func() time.Time
}

func NewIdentityResolver(cfg config.JWTConfig, profiles *ProfileSource) *IdentityResolver {
	return &IdentityResolver{cfg: cfg, profiles: profiles, now: time.Now}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

// Resolve returns the caller's identity. Without a token the caller is a guest.
// The user id comes from the stored profile, then from the token claims.
func (i *IdentityResolver) Resolve(ctx context.Context, r *http.Request, scope Scope) (checkout.Identity, *checkout.Profile) {
	token := BearerToken(r)
	if token == "" {
		return checkout.Identity{}, nil
	}
	identity := checkout.Identity{Token: token}

	profile := i.profiles.Load(ctx, scope)
	if profile != nil && profile.ID != nil {
		id := *profile.ID
		identity.UserID = &id
		return identity, profile
	}
	if id, ok := i.userIDFromToken(token); ok {
		identity.UserID = &id
	}
	return identity, profile
}

func (i *IdentityResolver) userIDFromToken(token string) (int64, bool) {
	claims := jwt.MapClaims{}
	if i.cfg.Secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return 0, false
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(i.now()) {
			return 0, false
		}
	} else {
		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
			jwt.WithTimeFunc(i.now),
		}
		if i.cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(i.cfg.Issuer))
		}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return []byte(i.cfg.Secret), nil
		}, opts...)
		if err != nil {
			return 0, false
		}
	}

	if id, ok := numericClaim(claims["user_id"]); ok {
		return id, true
	}
	return numericClaim(claims["sub"])
}

func numericClaim(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

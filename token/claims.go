// Package token reads the claims of a stored access token without verifying its signature.
// The client never holds the issuer's keys, so the claims are informational only: they are used
// to display who is signed in and when the token lapses, never to authorize anything.
package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-session-gateway/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrEmptyToken = errors.New("empty token")

// Claims is the subset of access token claims the client cares about.
type Claims struct {
	Subject   string     // sub - the principal the token was issued to
	Issuer    string     // iss
	Email     string     // email, when the issuer includes it
	Audience  []string   // aud
	Roles     []string   // roles, or realm_access.roles for Keycloak-issued tokens
	IssuedAt  *time.Time // iat
	ExpiresAt *time.Time // exp
}

// Inspect parses raw as a JWT and extracts its claims. Opaque (non-JWT) tokens return an error.
func Inspect(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, err
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Issuer, _ = mapClaims.GetIssuer()
	claims.Email, _ = mapClaims["email"].(string)
	if aud, err := mapClaims.GetAudience(); err == nil {
		claims.Audience = aud
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		claims.IssuedAt = &t
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		claims.ExpiresAt = &t
	}
	claims.Roles = rolesFrom(mapClaims)
	return claims, nil
}

func rolesFrom(claims jwtlib.MapClaims) []string {
	if roles, ok := claims["roles"].([]any); ok {
		return utils.ToStringSlice(roles)
	}
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		if roles, ok := realm["roles"].([]any); ok {
			return utils.ToStringSlice(roles)
		}
	}
	return nil
}

// Expired reports whether the exp claim is in the past. Tokens without exp never expire.
func (c *Claims) Expired() bool {
	return c.ExpiresAt != nil && NowTimeFunc().After(*c.ExpiresAt)
}

// ExpiresIn returns the time left before exp, zero when expired or when there is no exp claim.
func (c *Claims) ExpiresIn() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	left := c.ExpiresAt.Sub(NowTimeFunc())
	if left < 0 {
		return 0
	}
	return left
}

package credentials

import (
	"github.com/jrsteele09/go-session-gateway/token"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store Store
}

// TokenSource reads the stored tokens each time Token is called, so a credential written after
// the source was created is still returned. It fails with ErrNoAccessToken when none is stored.
// The returned token is never refreshed.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	access, ok, err := s.store.Get(KeyAccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenSource] access token")
	}
	if !ok || access == "" {
		return nil, ErrNoAccessToken
	}
	refresh, _, err := s.store.Get(KeyRefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[TokenSource] refresh token")
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
	}
	// Opaque tokens simply carry no expiry
	if claims, err := token.Inspect(access); err == nil && claims.ExpiresAt != nil {
		tok.Expiry = *claims.ExpiresAt
	}
	return tok, nil
}

package fakebackend

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const refreshTokenLength = 32

type contextKey string

const contextKeyUserID contextKey = "user_id"

const (
	detailMissingCredentials = "Authentication credentials were not provided."
	detailInvalidToken       = "Given token not valid for any token type"
)

var errInvalidToken = errors.New("invalid access token")

// issueAccessToken signs a short-lived HS256 access token for the account.
func (s *Server) issueAccessToken(a *account) (string, error) {
	now := s.nowTime()
	claims := jwtlib.MapClaims{
		"iss":        issuer,                              // The issuer of the token
		"sub":        a.profile.UserID,                    // The external user identifier
		"uid":        strconv.FormatInt(a.profile.ID, 10), // Backend primary key
		"email":      a.profile.Email,                     // Contact address at issue time
		"iat":        now.Unix(),                          // Issued At
		"exp":        now.Add(s.accessTTL).Unix(),         // Expiry
		"jti":        uuid.New().String(),                 // Unique token ID
		"token_type": "access",                            // Distinguishes access from refresh
		"roles":      []string{"customer"},                // Authorization data
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "[fakebackend issueAccessToken] signing")
	}
	return signed, nil
}

// issueRefreshToken stores a random opaque token for the user. Only one refresh token is kept per
// user. The client never exchanges it.
func (s *Server) issueRefreshToken(userID int64) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[fakebackend issueRefreshToken] failed to generate random bytes")
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	for existing, id := range s.data.refresh {
		if id == userID {
			delete(s.data.refresh, existing)
		}
	}
	s.data.refresh[tokenStr] = userID
	return tokenStr, nil
}

// verifyAccessToken returns the backend user id the token was issued to.
func (s *Server) verifyAccessToken(raw string) (int64, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.nowTime),
	)
	if err != nil {
		return 0, errors.Wrap(errInvalidToken, err.Error())
	}
	if tt, _ := claims["token_type"].(string); tt != "access" {
		return 0, errInvalidToken
	}
	uid, _ := claims["uid"].(string)
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0, errInvalidToken
	}
	return id, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, raw, found := strings.Cut(header, " ")
		if header == "" || !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			writeDetail(w, http.StatusUnauthorized, detailMissingCredentials)
			return
		}
		userID, err := s.verifyAccessToken(strings.TrimSpace(raw))
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected access token")
			writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
			return
		}

		s.data.lock.RLock()
		a := s.data.accountByID(userID)
		s.data.lock.RUnlock()
		if a == nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(contextKeyUserID).(int64)
	return id
}

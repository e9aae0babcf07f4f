package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ministagram/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// userIDKey is the context key for the authenticated user's ID
const userIDKey contextKey = "user_id"

// Error codes for token failures, carried in the error envelope.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// tokenIssuer signs and verifies HS256 access tokens carrying a user_id claim.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t *tokenIssuer) issue(userID int64) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(t.ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *tokenIssuer) parse(raw string) (int64, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return int64(userIDFloat), nil
}

// authMiddleware rejects requests without a valid bearer token and puts the user ID
// into the request context. Tokens of deleted users are rejected too.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		authHeader := r.Header.Get("Authorization")
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = strings.TrimSpace(parts[1])
		}
		if tokenString == "" {
			httputil.WriteUnauthorized(w, "Missing authentication token")
			return
		}

		userID, err := s.tokens.parse(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httputil.WriteError(w, http.StatusUnauthorized, CodeTokenExpired, "Access token has expired")
				return
			}
			httputil.WriteError(w, http.StatusUnauthorized, CodeTokenInvalid, "Invalid authentication token")
			return
		}
		if _, err := s.store.UserByID(userID); err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, CodeTokenInvalid, "Unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext extracts the user ID set by authMiddleware.
func userIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

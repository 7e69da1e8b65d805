package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/evemind/evemind/internal/auth"
	"github.com/evemind/evemind/internal/store"
)

// TokenValidator checks an access token and returns its claims. Implemented
// by *auth.Service.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth authenticates requests with a Bearer JWT. On success the user's id,
// email and role are stored in the request context, along with the audit
// actor (user id, client IP, user agent) consumed by the record store.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				unauthorized(w)
				return
			}

			claims, err := validator.Validate(tok)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyUserEmail, claims.Email)
			ctx = context.WithValue(ctx, ContextKeyUserRole, claims.Role)
			ctx = store.WithActor(ctx, store.Actor{
				UserID:    claims.UserID,
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, `{"success":false,"message":"missing or invalid credentials"}`, http.StatusUnauthorized)
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return authHeader[7:]
	}
	return ""
}

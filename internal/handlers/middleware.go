package handlers

import (
	"context"
	"net/http"
	"strings"

	"deckdrill/internal/security"

	"go.uber.org/zap"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// Middleware carries the cross-cutting request wrappers
type Middleware struct {
	tokens  *security.TokenManager
	limiter *security.RateLimiter
	log     *zap.Logger
}

// NewMiddleware creates the middleware set
func NewMiddleware(tokens *security.TokenManager, limiter *security.RateLimiter, log *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, limiter: limiter, log: log}
}

// RequireAuth verifies the bearer token and stores the owner id on the
// request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}

		ownerID, err := m.tokens.OwnerID(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects callers that exceed the event submission budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := security.GetClientIP(r)
		if ownerID, ok := OwnerID(r); ok {
			key = ownerID
		}
		if !m.limiter.Allow(key) {
			respondJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

// OwnerID reads the authenticated owner from the request context
func OwnerID(r *http.Request) (string, bool) {
	ownerID, ok := r.Context().Value(ownerIDKey).(string)
	return ownerID, ok
}

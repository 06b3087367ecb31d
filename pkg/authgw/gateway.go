package authgw

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// SessionValidator is the session core contract the gateway consumes.
type SessionValidator interface {
	Validate(ctx context.Context, accessToken string) (string, error)
}

// Gateway guards HTTP routes behind bearer-token authentication.
type Gateway struct {
	sessions SessionValidator
	log      *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a gateway delegating token validation to the session core.
func New(sessions SessionValidator, opts ...Option) *Gateway {
	if sessions == nil {
		panic("authgw: session validator is required")
	}

	g := &Gateway{
		sessions: sessions,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rejection codes carried in the 401 body.
const (
	CodeNoToken      = "no_token"
	CodeInvalidToken = "invalid_token"
)

// RequireAuth rejects requests without a valid bearer credential. On
// success the resolved user ID and raw token are placed in the request
// context for downstream handlers.
//
// The reason a credential failed (absent, malformed, expired, backend
// error) is logged but never reflected in the response beyond the
// no_token/invalid_token split the clients rely on.
func (g *Gateway) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromHeader(r)
		if !ok {
			g.log.WarnContext(r.Context(), "authentication failed: no valid token", "path", r.URL.Path)
			g.reject(w, CodeNoToken, "Authentication required")
			return
		}

		userID, err := g.sessions.Validate(r.Context(), token)
		if err != nil {
			g.log.WarnContext(r.Context(), "authentication failed: invalid or expired token", "path", r.URL.Path)
			g.reject(w, CodeInvalidToken, "Invalid or expired token")
			return
		}

		g.log.DebugContext(r.Context(), "request authenticated", "user_id", userID, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), userID, token)))
	})
}

func (g *Gateway) reject(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"message": message,
			"code":    code,
		},
	})
}

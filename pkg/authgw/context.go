package authgw

import "context"

type identityContextKey struct{}

// identity is the request-scoped authentication state. It lives only in the
// request context and disappears with it; there is no global state to leak
// between concurrent requests.
type identity struct {
	userID string
	token  string
}

func withIdentity(ctx context.Context, userID, token string) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity{userID: userID, token: token})
}

// UserIDFromContext returns the authenticated user ID for the request, if
// the request passed through RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityContextKey{}).(identity)
	if !ok {
		return "", false
	}
	return id.userID, true
}

// TokenFromContext returns the raw access token the request authenticated
// with. Handlers use it for self-service logout.
func TokenFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityContextKey{}).(identity)
	if !ok {
		return "", false
	}
	return id.token, true
}

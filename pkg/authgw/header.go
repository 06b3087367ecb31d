package authgw

import (
	"net/http"
	"strings"
)

// headerAuthorization is the sole credential transport: there is no cookie
// or query parameter fallback.
const headerAuthorization = "Authorization"

const bearerScheme = "bearer"

// TokenFromHeader extracts the bearer token from the Authorization header.
// A malformed header (wrong scheme, wrong part count, or the literal
// "null"/"undefined" placeholders some clients send) reads the same as an
// absent one.
func TokenFromHeader(r *http.Request) (string, bool) {
	value := r.Header.Get(headerAuthorization)
	if value == "" {
		return "", false
	}

	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}

	token := parts[1]
	switch strings.ToLower(token) {
	case "", "null", "undefined":
		return "", false
	}

	return token, true
}

package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// tokenBytes gives 256 bits of entropy per token, well past the point where
// collisions across all live sessions are a practical concern.
const tokenBytes = 32

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// generateTokenPair mints the access and refresh tokens for one session,
// guaranteeing they differ from each other.
func generateTokenPair() (access, refresh string, err error) {
	access, err = generateToken()
	if err != nil {
		return "", "", err
	}
	for {
		refresh, err = generateToken()
		if err != nil {
			return "", "", err
		}
		if refresh != access {
			return access, refresh, nil
		}
	}
}

// redact shortens a token for log output.
func redact(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}

package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// stateBytes of entropy, encoded without padding so the value is safe in a
// query string as is.
const stateBytes = 32

var stateEncoding = base64.RawURLEncoding

func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return stateEncoding.EncodeToString(b), nil
}

// ValidateState compares in constant time. An empty expected state never
// matches.
func ValidateState(expected string, received string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenSize is the number of random bytes behind session and CSRF tokens.
const TokenSize = 32

// GenerateToken returns TokenSize random bytes as a 64-character hex string.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

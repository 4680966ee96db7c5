package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const capabilityTokenBytes = 32

// generateCapabilityToken returns an unguessable random token. Possession of
// the token alone authorizes the corresponding workflow transition, so the
// randomness source has to be crypto/rand.
func generateCapabilityToken() (string, error) {
	buf := make([]byte, capabilityTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

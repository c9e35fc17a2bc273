package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	OpaqueTokenBytes     = 32
	VerificationTokenTTL = 24 * time.Hour
)

// GenerateOpaqueToken returns 32 random bytes hex-encoded. Used for email
// verification links; uniqueness is probabilistic.
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Package jwt implements generation and parsing of the HS256 access
// tokens carried in the Authorization header.
package jwt

import (
	"time"
)

// Maker describes token creation and validation.
type Maker interface {
	// GenerateToken issues an access token for the given account.
	GenerateToken(userUID, email, role string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl signs and verifies tokens with a shared secret key.
type MakerImpl struct {
	secretKey string        // Signing key
	tokenTTL  time.Duration // Access-token lifetime
}

// NewJWTMaker creates a MakerImpl from a secret key and token TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

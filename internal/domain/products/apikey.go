package products

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefix = "pk_"

// apiKeyCost is the bcrypt work factor; tests lower it.
var apiKeyCost = bcrypt.DefaultCost

// NewAPIKey returns a fresh plaintext key together with its bcrypt hash and
// the short hint stored for display.
func NewAPIKey() (key, hash, hint string, err error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("generate api key: %w", err)
	}
	key = apiKeyPrefix + hex.EncodeToString(buf)

	h, err := bcrypt.GenerateFromPassword([]byte(key), apiKeyCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash api key: %w", err)
	}
	return key, string(h), key[:len(apiKeyPrefix)+4] + "..." + key[len(key)-4:], nil
}

// VerifyAPIKey reports whether key matches the product's stored hash.
func (p *Product) VerifyAPIKey(key string) bool {
	if p.APIKeyHash == nil || *p.APIKeyHash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*p.APIKeyHash), []byte(key)) == nil
}

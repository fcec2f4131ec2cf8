package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"districtevents/internal/domain"
)

const inviteTokenBytes = 32

type inviteTokenGenerator struct{}

// NewInviteTokenGenerator returns an InviteTokenGenerator producing 64-character hex tokens.
// Only the SHA-256 of a token is stored.
func NewInviteTokenGenerator() domain.InviteTokenGenerator {
	return inviteTokenGenerator{}
}

func (inviteTokenGenerator) Generate() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (inviteTokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

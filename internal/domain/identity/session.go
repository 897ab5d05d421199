package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionKeyIdentityID is the session key holding the identity reference.
const SessionKeyIdentityID = "identity_id"

// SessionStore is server-side session storage keyed by an opaque session id.
type SessionStore interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	// Pop removes the key and returns its previous value.
	Pop(ctx context.Context, sessionID, key string) (string, bool, error)
	// Destroy removes the whole session.
	Destroy(ctx context.Context, sessionID string) error
}

// NewSessionID returns a random 256-bit hex session id.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

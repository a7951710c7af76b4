// Package session holds the server-side stores backing authentication:
// the session table (token -> identity) and the password-recovery code
// table (email -> code). Both are defined as small interfaces with an
// in-memory implementation for tests/single-node use and a Redis
// implementation for deployments that need persistence across restarts.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RememberDuration is the validity window of a session created with
// "remember me". Sessions created without it carry no stored expiry and
// live until destroyed.
const RememberDuration = 30 * 24 * time.Hour

// CodeTTL is the absolute validity window of a recovery code.
const CodeTTL = 15 * time.Minute

// Identity is the authenticated principal bound to a session token.
type Identity struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
}

// Store persists sessions keyed by opaque token. A zero ttl means the
// session has no expiry and lives until deleted.
type Store interface {
	Save(ctx context.Context, token string, id Identity, ttl time.Duration) error
	// Get returns the identity for a live session, or nil when the
	// token is unknown or expired.
	Get(ctx context.Context, token string) (*Identity, error)
	// Refresh replaces the identity bound to a live session without
	// touching its expiry. Refreshing an unknown token is a no-op.
	Refresh(ctx context.Context, token string, id Identity) error
	// Delete is idempotent; deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// RecoveryCode is a pending single-use password-reset code.
type RecoveryCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore persists at most one pending recovery code per email.
// Issuing again overwrites the previous code.
type CodeStore interface {
	Put(ctx context.Context, email string, rc RecoveryCode) error
	// Get returns the pending code, or nil when none was issued.
	// Expiry is NOT checked here: redemption decides, so the caller
	// can distinguish "never issued" from "expired".
	Get(ctx context.Context, email string) (*RecoveryCode, error)
	Delete(ctx context.Context, email string) error
}

// NewToken returns a 256-bit random session token, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCode returns a random 6-digit recovery code as a string, preserving
// leading zeros.
func NewCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate recovery code: %w", err)
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

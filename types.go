package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated subject
type Identity interface {
	ID() string
	Name() string
	Email() string
}

// SessionClaimsReader is the verified content of a session token
type SessionClaimsReader interface {
	Subject() string
	AccountID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	SessionFromToken(token string) (SessionClaimsReader, error)
	IdentityFromSession(ctx context.Context, claims SessionClaimsReader) (Identity, error)
}

// TokenService issues and validates session tokens
type TokenService interface {
	Generate(subjectID string) (string, error)
	Validate(token string) (*SessionClaims, error)
}

// IdentityProvider ensures we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id string) (Identity, error)
}

// AccountStore is the credential-store surface the service layer needs.
// The bun backed Accounts repository implements it; tests fake it.
type AccountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Register(ctx context.Context, record *Account) (*Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*Account, error)
	ChangePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetCookieName() string
	GetContextKey() string
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

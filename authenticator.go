package accounts

import (
	"context"
	"reflect"
)

// Auther authenticates credentials and mints session tokens. Tokens are
// stateless: once issued they stay cryptographically valid until their
// expiry, logout only clears the client cookie. If server-initiated
// revocation becomes a requirement this needs a denylist or store-backed
// sessions; that tradeoff is deliberate, not an oversight.
type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identity first and only then issues a token. The
// ordering matters: a token must never exist for an account that failed the
// existence or password check.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrAccountNotRegistered
	}

	return s.tokenService.Generate(identity.ID())
}

// SessionFromToken validates a raw token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (SessionClaimsReader, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// IdentityFromSession resolves the claim subject back to an identity.
func (s *Auther) IdentityFromSession(ctx context.Context, claims SessionClaimsReader) (Identity, error) {
	identity, err := s.provider.FindIdentityByID(ctx, claims.AccountID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity", "error", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)

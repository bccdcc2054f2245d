package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockConfig() *MockConfig {
	cfg := new(MockConfig)
	cfg.On("GetSigningKey").Return(testSigningKey)
	cfg.On("GetTokenExpiration").Return(24)
	cfg.On("GetIssuer").Return("test-issuer")
	cfg.On("GetAudience").Return([]string{"test:audience"})
	return cfg
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)
	authenticator := accounts.NewAuthenticator(provider, newMockConfig())

	id := uuid.New().String()
	identity := testIdentity{id: id, name: "Ada Lovelace", email: "ada@example.com"}

	provider.On("VerifyIdentity", ctx, "ada@example.com", "s3cre!t").
		Return(identity, nil)

	token, err := authenticator.Login(ctx, "ada@example.com", "s3cre!t")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authenticator.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject())

	provider.AssertExpectations(t)
}

func TestLoginNoTokenOnVerifyFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
	}{
		{"unknown account", accounts.ErrAccountNotRegistered},
		{"bad password", accounts.ErrMismatchedHashAndPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := new(MockIdentityProvider)
			provider.On("VerifyIdentity", ctx, "ada@example.com", mock.Anything).
				Return(nil, tc.err)

			authenticator := accounts.NewAuthenticator(provider, newMockConfig())

			token, err := authenticator.Login(ctx, "ada@example.com", "whatever")
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, token, "a failed login must not yield a token")

			provider.AssertExpectations(t)
		})
	}
}

func TestLoginNilIdentity(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", ctx, "ada@example.com", "s3cre!t").
		Return(nil, nil)

	authenticator := accounts.NewAuthenticator(provider, newMockConfig())

	token, err := authenticator.Login(ctx, "ada@example.com", "s3cre!t")
	assert.ErrorIs(t, err, accounts.ErrAccountNotRegistered)
	assert.Empty(t, token)
}

func TestSessionFromToken(t *testing.T) {
	provider := new(MockIdentityProvider)
	authenticator := accounts.NewAuthenticator(provider, newMockConfig())

	id := uuid.New().String()
	token, err := authenticator.TokenService().Generate(id)
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, session.AccountID())

	_, err = authenticator.SessionFromToken("bogus")
	assert.Error(t, err)
}

func TestIdentityFromSession(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)
	authenticator := accounts.NewAuthenticator(provider, newMockConfig())

	id := uuid.New().String()
	identity := testIdentity{id: id, name: "Ada Lovelace", email: "ada@example.com"}
	provider.On("FindIdentityByID", ctx, id).Return(identity, nil)

	token, err := authenticator.TokenService().Generate(id)
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)

	resolved, err := authenticator.IdentityFromSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resolved.Email())

	provider.AssertExpectations(t)
}

package accounts_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializePasswordReset(t *testing.T) {
	repo := newFakeRepo()
	account := seedAccount(t, repo.accounts, "ada@example.com", "s3cre!t")

	handler := accounts.NewInitializePasswordResetHandler(repo)

	var resp *accounts.InitializePasswordResetResponse
	err := handler.Execute(context.Background(), accounts.InitializePasswordResetMessage{
		Email: "ada@example.com",
		OnResponse: func(r *accounts.InitializePasswordResetResponse) {
			resp = r
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Reset)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Reset.AccountID)
	assert.Equal(t, account.ID, *resp.Reset.AccountID)
	assert.Equal(t, accounts.ResetRequestedStatus, resp.Reset.Status)
	assert.Empty(t, resp.Reset.Token, "no token material is issued yet")
	require.NotNil(t, resp.Reset.ExpiresAt)
	assert.True(t, resp.Reset.ExpiresAt.After(time.Now()))

	require.Len(t, repo.resets.created, 1)
}

func TestInitializePasswordResetUnknownEmail(t *testing.T) {
	repo := newFakeRepo()
	handler := accounts.NewInitializePasswordResetHandler(repo)

	err := handler.Execute(context.Background(), accounts.InitializePasswordResetMessage{
		Email: "nobody@example.com",
	})
	assert.ErrorIs(t, err, accounts.ErrAccountNotFound)
	assert.Empty(t, repo.resets.created)
}

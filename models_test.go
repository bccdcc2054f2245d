package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestProfilePatchApplyTo(t *testing.T) {
	account := &accounts.Account{
		ID:          uuid.New(),
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Phone:       "+14155550100",
		Photo:       "https://example.com/ada.png",
		Bio:         "first programmer",
		PasswordHash: "$2a$14$hash",
	}

	tests := []struct {
		name  string
		patch accounts.ProfilePatch
		check func(t *testing.T, a *accounts.Account)
	}{
		{
			name:  "empty patch changes nothing",
			patch: accounts.ProfilePatch{},
			check: func(t *testing.T, a *accounts.Account) {
				assert.Equal(t, "Ada Lovelace", a.Name)
				assert.Equal(t, "+14155550100", a.Phone)
			},
		},
		{
			name:  "single field",
			patch: accounts.ProfilePatch{Name: strptr("Ada King")},
			check: func(t *testing.T, a *accounts.Account) {
				assert.Equal(t, "Ada King", a.Name)
				assert.Equal(t, "first programmer", a.Bio)
			},
		},
		{
			name: "explicit empty string clears a field",
			patch: accounts.ProfilePatch{
				Bio: strptr(""),
			},
			check: func(t *testing.T, a *accounts.Account) {
				assert.Equal(t, "", a.Bio)
			},
		},
		{
			name: "multiple fields",
			patch: accounts.ProfilePatch{
				Phone: strptr("+442071838750"),
				Photo: strptr("https://example.com/new.png"),
			},
			check: func(t *testing.T, a *accounts.Account) {
				assert.Equal(t, "+442071838750", a.Phone)
				assert.Equal(t, "https://example.com/new.png", a.Photo)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			copy := *account
			tc.patch.ApplyTo(&copy)

			// identity fields never move through a patch
			assert.Equal(t, account.ID, copy.ID)
			assert.Equal(t, account.Email, copy.Email)
			assert.Equal(t, account.PasswordHash, copy.PasswordHash)

			tc.check(t, &copy)
		})
	}
}

func TestProfilePatchIsZero(t *testing.T) {
	assert.True(t, accounts.ProfilePatch{}.IsZero())
	assert.False(t, accounts.ProfilePatch{Name: strptr("x")}.IsZero())
	assert.False(t, accounts.ProfilePatch{Bio: strptr("")}.IsZero())
}

func TestPublicProfileOmitsHash(t *testing.T) {
	account := &accounts.Account{
		ID:           uuid.New(),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$14$hash",
	}

	profile := account.PublicProfile()
	assert.Equal(t, account.ID, profile.ID)
	assert.Equal(t, account.Email, profile.Email)
	assert.Equal(t, account.Name, profile.Name)
}

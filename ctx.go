package accounts

import (
	"context"
)

var accountCtxKey = &contextKey{"account"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithAccountContext sets the Account in the given context
func WithAccountContext(r context.Context, account *Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// AccountFromContext finds the account from the context.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithClaimsContext sets the SessionClaims in the given context
func WithClaimsContext(r context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the SessionClaims from the standard context
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok
}

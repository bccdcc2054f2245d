package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AccountProvider resolves identities against the credential store.
type AccountProvider struct {
	store  AccountStore
	logger Logger
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountStore) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	p.logger = l
	return p
}

// VerifyIdentity finds the account by email and compares the password.
// Unknown email and bad password stay distinct here: the login surface
// answers "please register" for one and "invalid credentials" for the
// other, both as client errors.
func (p AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	account, err := p.store.FindByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrAccountNotRegistered
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return accountIdentity{
		id:    account.ID.String(),
		name:  account.Name,
		email: account.Email,
	}, nil
}

// FindIdentityByID resolves a subject id to an identity, without touching
// the password hash.
func (p AccountProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	account, err := p.store.FindByID(ctx, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return accountIdentity{
		id:    account.ID.String(),
		name:  account.Name,
		email: account.Email,
	}, nil
}

type accountIdentity struct {
	id    string
	name  string
	email string
}

func (a accountIdentity) ID() string    { return a.id }
func (a accountIdentity) Name() string  { return a.name }
func (a accountIdentity) Email() string { return a.email }

var _ Identity = accountIdentity{}
var _ IdentityProvider = (*AccountProvider)(nil)

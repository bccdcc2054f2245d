package accounts_test

import (
	"context"
	"database/sql"
	"sync"

	accounts "github.com/goliatone/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testIdentity is a simple Identity implementation for tests
type testIdentity struct {
	id    string
	name  string
	email string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Name() string  { return t.name }
func (t testIdentity) Email() string { return t.email }

// MockIdentityProvider implements accounts.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (accounts.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(accounts.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id string) (accounts.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(accounts.Identity)
	return identity, args.Error(1)
}

// MockConfig implements accounts.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetCookieName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	value, _ := args.Get(0).([]string)
	return value
}

// fakeAccounts is an in-memory Accounts repository. The embedded interface
// covers the query-builder surface the tests never touch.
type fakeAccounts struct {
	accounts.Accounts

	mu   sync.Mutex
	byID map[uuid.UUID]*accounts.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[uuid.UUID]*accounts.Account{}}
}

func (f *fakeAccounts) clone(a *accounts.Account) *accounts.Account {
	cp := *a
	return &cp
}

func (f *fakeAccounts) Register(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	return f.RegisterTx(ctx, nil, record)
}

func (f *fakeAccounts) RegisterTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.Email == record.Email {
			return nil, accounts.ErrEmailTaken
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	f.byID[record.ID] = f.clone(record)
	return f.clone(record), nil
}

func (f *fakeAccounts) FindByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	return f.FindByIDTx(ctx, nil, id)
}

func (f *fakeAccounts) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return f.clone(record), nil
}

func (f *fakeAccounts) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return f.FindByEmailTx(ctx, nil, email)
}

func (f *fakeAccounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.byID {
		if record.Email == email {
			return f.clone(record), nil
		}
	}
	return nil, accounts.ErrAccountNotFound
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, patch accounts.ProfilePatch) (*accounts.Account, error) {
	return f.UpdateProfileTx(ctx, nil, id, patch)
}

func (f *fakeAccounts) UpdateProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch accounts.ProfilePatch) (*accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}

	patch.ApplyTo(record)
	return f.clone(record), nil
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return f.ChangePasswordTx(ctx, nil, id, passwordHash)
}

func (f *fakeAccounts) ChangePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.byID[id]
	if !ok {
		return accounts.ErrAccountNotFound
	}

	record.PasswordHash = passwordHash
	return nil
}

func (f *fakeAccounts) delete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// fakeResets records created reset rows
type fakeResets struct {
	repository.Repository[*accounts.PasswordReset]

	mu      sync.Mutex
	created []*accounts.PasswordReset
}

func (f *fakeResets) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.PasswordReset, criteria ...repository.InsertCriteria) (*accounts.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.created = append(f.created, record)
	return record, nil
}

// fakeRepo is an in-memory RepositoryManager. RunInTx executes the callback
// directly; the fakes ignore the transaction handle.
type fakeRepo struct {
	accounts *fakeAccounts
	resets   *fakeResets
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts: newFakeAccounts(),
		resets:   &fakeResets{},
	}
}

func (f *fakeRepo) Validate() error { return nil }

func (f *fakeRepo) MustValidate() {}

func (f *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn(ctx, bun.Tx{})
	}
}

func (f *fakeRepo) Accounts() accounts.Accounts { return f.accounts }

func (f *fakeRepo) PasswordResets() repository.Repository[*accounts.PasswordReset] {
	return f.resets
}

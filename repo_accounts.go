package accounts

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var changePasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
) RETURNING *;`

// Accounts is the credential store. Email uniqueness rides on the schema
// constraint; two concurrent registrations race at the insert and the loser
// gets the conflict error.
type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*Account, error)
	UpdateProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch ProfilePatch) (*Account, error)
	ChangePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ChangePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accountsRepo)(nil)
	_ AccountStore                    = (*accountsRepo)(nil)
	_ repository.Repository[*Account] = (*accountsRepo)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accountsRepo) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	record.Email = normalizeEmail(record.Email)

	if _, err := a.FindByEmailTx(ctx, tx, record.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
		return nil, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		// The unique index is the referee for the register race: whoever
		// loses the insert still surfaces as a duplicate email.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
	}

	return created, nil
}

func (a *accountsRepo) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *accountsRepo) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accountsRepo) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*Account, error) {
	return a.UpdateProfileTx(ctx, a.db, id, patch)
}

// UpdateProfileTx merges the patch over the stored record. Email is not in
// the patch type so it cannot change through this path.
func (a *accountsRepo) UpdateProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch ProfilePatch) (*Account, error) {
	record, err := a.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return record, nil
	}

	patch.ApplyTo(record)

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *accountsRepo) ChangePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ChangePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *accountsRepo) ChangePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, changePasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	AccountID   uuid.UUID `json:"account_id"`
	OldPassword string    `json:"old_password"`
	NewPassword string    `json:"new_password"`
}

func (e ChangePasswordMessage) Type() string { return "account.change_password" }

// ChangePasswordHandler re-hashes and persists the password after verifying
// the old one. Previously issued session tokens stay valid until their
// natural expiry: rotating them would need server-side session state this
// service does not keep.
type ChangePasswordHandler struct {
	repo RepositoryManager
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo}
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	return h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err := h.repo.Accounts().FindByIDTx(ctx, tx, event.AccountID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password change")
		}

		if err := ComparePasswordAndHash(event.OldPassword, account.PasswordHash); err != nil {
			return goerrors.New("old password is incorrect", goerrors.CategoryAuth).
				WithTextCode(TextCodeInvalidCredentials).
				WithCode(goerrors.CodeBadRequest)
		}

		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		return h.repo.Accounts().ChangePasswordTx(ctx, tx, event.AccountID, hash)
	})
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// resetRequestTTL bounds how long a recorded reset request is considered
// live. No token material is attached to the row yet.
const resetRequestTTL = 30 * time.Minute

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Reset   *PasswordReset
	Success bool
}

// InitializePasswordResetHandler validates the account exists and records
// the request. Token issuance and delivery are intentionally absent: the
// PasswordReset record is a declared shape waiting for those semantics.
type InitializePasswordResetHandler struct {
	repo RepositoryManager
}

func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{repo: repo}
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err := h.repo.Accounts().FindByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		expires := time.Now().Add(resetRequestTTL)
		reset := &PasswordReset{
			AccountID: &account.ID,
			Status:    ResetRequestedStatus,
			ExpiresAt: &expires,
		}

		created, err := h.repo.PasswordResets().CreateTx(ctx, tx, reset)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
		}

		resp.Reset = created
		resp.Success = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

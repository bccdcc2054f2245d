package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type UpdateProfileMessage struct {
	AccountID  uuid.UUID    `json:"account_id"`
	Patch      ProfilePatch `json:"patch"`
	OnResponse func(*Account)
}

func (e UpdateProfileMessage) Type() string { return "account.update_profile" }

type UpdateProfileHandler struct {
	repo RepositoryManager
}

func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo}
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().UpdateProfile(ctx, event.AccountID, event.Patch)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile update failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}

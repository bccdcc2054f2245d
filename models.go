package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the identity record. PasswordHash never serializes; clients
// only ever see the Profile projection.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Photo         string     `bun:"photo" json:"photo,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone,omitempty"`
	Bio           string     `bun:"bio" json:"bio,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Profile is the public projection of an Account: the subset of fields safe
// to return to a client.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Photo string    `json:"photo,omitempty"`
	Phone string    `json:"phone,omitempty"`
	Bio   string    `json:"bio,omitempty"`
}

// PublicProfile projects the account for client responses.
func (a *Account) PublicProfile() Profile {
	return Profile{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Photo: a.Photo,
		Phone: a.Phone,
		Bio:   a.Bio,
	}
}

// ProfilePatch is a typed partial update over the mutable profile fields.
// A nil field keeps the current value. Email is not part of the patch:
// it is immutable through this path.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Photo *string `json:"photo,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// ApplyTo merges the provided fields over the current record.
func (p ProfilePatch) ApplyTo(a *Account) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Photo != nil {
		a.Photo = *p.Photo
	}
	if p.Bio != nil {
		a.Bio = *p.Bio
	}
}

// IsZero reports whether the patch carries no changes.
func (p ProfilePatch) IsZero() bool {
	return p.Name == nil && p.Phone == nil && p.Photo == nil && p.Bio == nil
}

const (
	// ResetRequestedStatus is the requested status
	ResetRequestedStatus = "requested"
	// ResetExpiredStatus is the expired status
	ResetExpiredStatus = "expired"
)

// PasswordReset is the reset-token record. Declared but intentionally inert:
// issuance and consumption semantics are not part of this service yet, so
// nothing reads Token back out of the table.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID     *uuid.UUID `bun:"account_id,notnull" json:"account_id,omitempty"`
	Account       *Account   `bun:"rel:has-one,join:account_id=id" json:"account,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	Token         string     `bun:"token" json:"-"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

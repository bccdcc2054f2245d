package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeValidationFailed   = "accounts_validation_failed"
	TextCodeEmailTaken         = "accounts_email_taken"
	TextCodeAccountNotFound    = "accounts_not_found"
	TextCodeInvalidCredentials = "accounts_invalid_credentials"
	TextCodeUnauthenticated    = "accounts_unauthenticated"
	TextCodeTokenExpired       = "accounts_token_expired"
	TextCodeTokenMalformed     = "accounts_token_malformed"
)

// ErrEmailTaken is returned when registration hits the email uniqueness
// constraint.
var ErrEmailTaken = errors.New("email has already been registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the identifier.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrAccountNotRegistered is the login flavor of not-found: the subject
// should register first. Surfaces as a 400, matching the login contract.
var ErrAccountNotRegistered = errors.New("account not found, please register", errors.CategoryBadInput).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password does not verify
// against the stored hash.
var ErrMismatchedHashAndPassword = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrUnauthenticated is the single answer the gate gives for every token
// failure mode. We deliberately do not tell the caller which check failed.
var ErrUnauthenticated = errors.New("not authorized, please login", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("session token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is rejected input for the password hasher.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(errors.CodeBadRequest)

// NewValidationError wraps a payload validation failure.
func NewValidationError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, "invalid request payload").
		WithTextCode(TextCodeValidationFailed).
		WithCode(errors.CodeBadRequest)
}

// HTTPStatusFromError maps the package taxonomy onto HTTP statuses. Every
// error is terminal for its request; there is nothing to retry.
func HTTPStatusFromError(err error) int {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return fiber.StatusInternalServerError
	}

	switch rich.Category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		if rich.TextCode == TextCodeInvalidCredentials {
			return fiber.StatusBadRequest
		}
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed or unverifiable tokens.
// Validate wraps the jwt failure rather than returning the sentinel, so the
// TextCode is the reliable marker; the string probes catch raw jwt and
// fiber errors that never went through our wrapping.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

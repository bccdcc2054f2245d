package accounts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProtectedConfig configures the auth gateway middleware.
type ProtectedConfig struct {
	Config Config
	Tokens TokenService
	Store  AccountStore
	Logger Logger

	// Filter defines a function to skip the middleware when it returns true
	Filter func(*fiber.Ctx) bool

	// ErrorHandler runs for every rejection. The default answers 401 with
	// one generic message for every failure mode.
	ErrorHandler func(*fiber.Ctx, error) error
}

// Protected gates a route behind a valid session. The decision is
// synchronous and terminal for the request:
//
//  1. extract the token from the session cookie
//  2. validate signature and expiry
//  3. resolve the subject to an account, dropping the password hash
//  4. attach the account to the request context and continue
//
// Which step failed is logged but never surfaced; the client only learns it
// should log in again.
func Protected(cfg ProtectedConfig) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = unauthenticatedHandler
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := c.Cookies(cfg.Config.GetCookieName())
		if raw == "" {
			logger.Debug("auth gate: no session cookie", "path", c.Path())
			return errorHandler(c, ErrUnauthenticated)
		}

		claims, err := cfg.Tokens.Validate(raw)
		if err != nil {
			logger.Info("auth gate: token rejected", "error", err, "path", c.Path())
			return errorHandler(c, ErrUnauthenticated)
		}

		id, err := uuid.Parse(claims.AccountID())
		if err != nil {
			logger.Info("auth gate: bad subject id", "error", err)
			return errorHandler(c, ErrUnauthenticated)
		}

		account, err := cfg.Store.FindByID(c.UserContext(), id)
		if err != nil {
			// Identity vanished after issuance, e.g. a deleted account.
			logger.Info("auth gate: subject not resolvable", "error", err, "subject", id.String())
			return errorHandler(c, ErrUnauthenticated)
		}

		// The hash must never travel past the gate.
		account.PasswordHash = ""

		c.Locals(cfg.Config.GetContextKey(), account)
		c.SetUserContext(WithClaimsContext(
			WithAccountContext(c.UserContext(), account),
			claims,
		))

		return c.Next()
	}
}

// AccountFromFiber returns the gate-resolved account for the request.
func AccountFromFiber(c *fiber.Ctx, key string) (*Account, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	account, ok := c.Locals(key).(*Account)
	return account, ok
}

func unauthenticatedHandler(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrUnauthenticated.Message,
	})
}

package accounts

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteAuthenticator owns the session cookie lifecycle around the
// Authenticator. The cookie carries the whole session; there is no
// server-side session record behind it.
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := time.Duration(DefaultTokenExpiration) * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = logger
	return a
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login authenticates the credentials and, only on success, sets the
// session cookie. Returns the issued token so JSON surfaces can echo it.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, identifier, password string) (string, error) {
	token, err := a.auth.Login(c.UserContext(), identifier, password)
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return "", err
	}

	a.SetSessionCookie(c, token)
	return token, nil
}

// Logout overwrites the session cookie with an already expired empty value.
// The token itself stays valid until its natural expiry; there is no
// server-side revocation to perform.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.clearCookie(c, a.cfg.GetCookieName())
}

// SetSessionCookie writes the token under the session cookie contract:
// HTTP-only, Secure, SameSite=None, path "/", expiring with the token.
func (a *RouteAuthenticator) SetSessionCookie(c *fiber.Ctx, val string) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(a.cookieDuration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func (a *RouteAuthenticator) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

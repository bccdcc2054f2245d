// Package accounts implements a cookie-session user account service: account
// registration, password login, session verification, partial profile
// updates, and password changes, persisted through Bun repositories.
//
// Sessions:
//   - Login verifies the stored bcrypt hash and only then mints an HS256 JWT,
//     delivered as an HTTP-only cookie. Tokens are stateless; there is no
//     server-side revocation list, so logout simply expires the cookie.
//   - Protected wraps routes as the auth gateway: it resolves the cookie to a
//     live account, strips the password hash, and attaches the record to both
//     fiber locals and the request context. Every failure mode collapses into
//     the same generic 401 so callers cannot probe which step failed.
//
// Profiles:
//   - Profile updates are modeled as a typed ProfilePatch: absent fields are
//     left untouched, and the email address is immutable after registration.
//
// Wiring happens through RepositoryManager (Bun transactions plus the
// Accounts and PasswordResets repositories), command handlers that carry one
// operation each, and AccountsController for the HTTP surface.
package accounts

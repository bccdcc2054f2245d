package accounts

// DefaultTokenExpiration is the session lifetime in hours. The expiry is
// fixed at issuance; there is no sliding window.
const DefaultTokenExpiration = 24

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "token"

// DefaultContextKey is the request-local key the gate stores the resolved
// account under.
const DefaultContextKey = "account"

// SimpleConfig is a plain Config implementation. The signing key is injected
// here at construction, never read from ambient process state.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	CookieName      string
	ContextKey      string
	Issuer          string
	Audience        []string
}

var _ Config = SimpleConfig{}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

func (c SimpleConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

package accounts

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

type AccountsControllerRoutes struct {
	Register       string
	Login          string
	Logout         string
	Profile        string
	Status         string
	Password       string
	ForgotPassword string
}

type AccountsController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auther *RouteAuthenticator
	Tokens TokenService
	Config Config
	Routes *AccountsControllerRoutes
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger: defLogger{},
		Routes: &AccountsControllerRoutes{
			Register:       "/register",
			Login:          "/login",
			Logout:         "/logout",
			Profile:        "/me",
			Status:         "/loggedin",
			Password:       "/password",
			ForgotPassword: "/forgot-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in accounts controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in accounts controller...")
	}

	if c.Config == nil {
		panic("Missing Config in accounts controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokens(tokens TokenService) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerConfig(cfg Config) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Debug = debug
		return c
	}
}

// RegisterAccountRoutes mounts the controller. The protected handler is the
// auth gateway; public routes skip it.
func RegisterAccountRoutes(app fiber.Router, controller *AccountsController, protected fiber.Handler) {
	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Logout, controller.LogOut)
	app.Get(controller.Routes.Status, controller.LoginStatus)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword)

	app.Get(controller.Routes.Profile, protected, controller.ProfileShow)
	app.Patch(controller.Routes.Profile, protected, controller.ProfileUpdate)
	app.Patch(controller.Routes.Password, protected, controller.PasswordChange)
}

// ProfileResponse is the body for register/login: public projection plus
// the freshly issued token.
type ProfileResponse struct {
	Profile
	Token string `json:"token,omitempty"`
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfilePayload carries the partial profile update. There is no
// email field: supplying one in the request body is silently ignored.
type UpdateProfilePayload struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Photo *string `json:"photo"`
	Bio   *string `json:"bio"`
}

// Validate will run validation rules
func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(validPhoneNumber)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

func (r UpdateProfilePayload) patch() ProfilePatch {
	return ProfilePatch{
		Name:  r.Name,
		Phone: r.Phone,
		Photo: r.Photo,
		Bio:   r.Bio,
	}
}

// ChangePasswordPayload is the password change body
type ChangePasswordPayload struct {
	OldPassword string `json:"old_password"`
	Password    string `json:"password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// ForgotPasswordPayload is the reset initialization body
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// RegistrationCreate handles POST /register. The session token is minted
// only after the account is durably created; a failed create never leaves a
// cookie behind.
func (a *AccountsController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	var account *Account
	msg := RegisterAccountMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(created *Account) {
			account = created
		},
	}

	register := NewRegisterAccountHandler(a.Repo)
	if err := register.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("register execute", "error", err)
		return a.respondError(c, err)
	}

	token, err := a.Tokens.Generate(account.ID.String())
	if err != nil {
		a.Logger.Error("register token generate", "error", err)
		return a.respondError(c, err)
	}

	a.Auther.SetSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(ProfileResponse{
		Profile: account.PublicProfile(),
		Token:   token,
	})
}

// LoginPost handles POST /login.
func (a *AccountsController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	token, err := a.Auther.Login(c, payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	account, err := a.Repo.Accounts().FindByEmail(c.UserContext(), payload.Email)
	if err != nil {
		a.Logger.Error("login profile lookup", "error", err)
		return a.respondError(c, ErrAccountNotRegistered)
	}

	return c.JSON(ProfileResponse{
		Profile: account.PublicProfile(),
		Token:   token,
	})
}

// LogOut handles GET /logout. Always succeeds: clearing a cookie that was
// never set is still a logout.
func (a *AccountsController) LogOut(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{"message": "successfully logged out"})
}

// LoginStatus handles GET /loggedin: a bare boolean, verified against the
// cookie without touching the store.
func (a *AccountsController) LoginStatus(c *fiber.Ctx) error {
	raw := c.Cookies(a.Config.GetCookieName())
	if raw == "" {
		return c.JSON(false)
	}

	if _, err := a.Tokens.Validate(raw); err != nil {
		return c.JSON(false)
	}

	return c.JSON(true)
}

// ProfileShow handles GET /me for the gateway-resolved subject. The record
// is re-read so a deletion racing the request surfaces as 404 rather than a
// stale projection.
func (a *AccountsController) ProfileShow(c *fiber.Ctx) error {
	subject, ok := AccountFromFiber(c, a.Config.GetContextKey())
	if !ok {
		return a.respondError(c, ErrUnauthenticated)
	}

	account, err := a.Repo.Accounts().FindByID(c.UserContext(), subject.ID)
	if err != nil {
		return a.respondError(c, ErrAccountNotFound)
	}

	return c.JSON(account.PublicProfile())
}

// ProfileUpdate handles PATCH /me.
func (a *AccountsController) ProfileUpdate(c *fiber.Ctx) error {
	subject, ok := AccountFromFiber(c, a.Config.GetContextKey())
	if !ok {
		return a.respondError(c, ErrUnauthenticated)
	}

	payload := new(UpdateProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("profile update parse payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("profile update validate payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	var account *Account
	msg := UpdateProfileMessage{
		AccountID: subject.ID,
		Patch:     payload.patch(),
		OnResponse: func(updated *Account) {
			account = updated
		},
	}

	update := NewUpdateProfileHandler(a.Repo)
	if err := update.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("profile update execute", "error", err)
		return a.respondError(c, err)
	}

	return c.JSON(account.PublicProfile())
}

// PasswordChange handles PATCH /password.
func (a *AccountsController) PasswordChange(c *fiber.Ctx) error {
	subject, ok := AccountFromFiber(c, a.Config.GetContextKey())
	if !ok {
		return a.respondError(c, ErrUnauthenticated)
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("password change parse payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password change validate payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	change := NewChangePasswordHandler(a.Repo)
	err := change.Execute(c.UserContext(), ChangePasswordMessage{
		AccountID:   subject.ID,
		OldPassword: payload.OldPassword,
		NewPassword: payload.Password,
	})
	if err != nil {
		a.Logger.Error("password change execute", "error", err)
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "password change successful"})
}

// ForgotPassword handles POST /forgot-password. Token creation and
// dispatch are not implemented; the handler only validates the account and
// records the request.
func (a *AccountsController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("forgot password validate payload", "error", err)
		return a.respondError(c, NewValidationError(err))
	}

	initReset := NewInitializePasswordResetHandler(a.Repo)
	err := initReset.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	})
	if err != nil {
		a.Logger.Error("forgot password execute", "error", err)
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "password reset initialized"})
}

func (a *AccountsController) respondError(c *fiber.Ctx, err error) error {
	status := HTTPStatusFromError(err)

	message := "internal server error"
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && status < fiber.StatusInternalServerError {
		message = rich.Message
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

func validPhoneNumber(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}

	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "ZZ")
	if err != nil {
		return errors.New("must be a valid international phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}

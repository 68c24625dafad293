package api

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/store"
	"github.com/nyaruka/phonenumbers"
)

type UsersController struct {
	Logger     auth.Logger
	Repo       store.RepositoryManager
	ContextKey string
}

func NewUsersController(repo store.RepositoryManager, logger auth.Logger) *UsersController {
	if repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}

	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return &UsersController{
		Logger:     logger,
		Repo:       repo,
		ContextKey: "user",
	}
}

// RegistrationPayload is the JSON payload for both public and admin registration
type RegistrationPayload struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone_number"`
	Address         string `json:"address"`
	Role            string `json:"role"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(validatePhone)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Register handles public self-registration, new accounts always start as
// customers regardless of what the payload claims.
func (c *UsersController) Register(ctx router.Context) error {
	return c.register(ctx, false)
}

// AdminRegister lets admins create accounts with elevated roles. The route
// is gated by the middleware, this handler trusts the role field.
func (c *UsersController) AdminRegister(ctx router.Context) error {
	return c.register(ctx, true)
}

func (c *UsersController) register(ctx router.Context, allowRole bool) error {
	payload := new(RegistrationPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("register parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	role := ""
	if allowRole {
		role = payload.Role
	}

	msg := store.RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Address:   payload.Address,
		Role:      role,
		Password:  payload.Password,
		UseHashid: true,
	}

	handler := store.NewRegisterUserHandler(c.Repo)
	user, err := handler.Execute(ctx.Context(), msg)
	if err != nil {
		c.Logger.Error("register user error", "error", err)
		return respondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusCreated, user)
}

// Get returns a single user. Customers can only fetch themselves.
func (c *UsersController) Get(ctx router.Context) error {
	id := ctx.Param("id")

	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	if !claims.IsAtLeast(string(auth.RoleAdmin)) && !claimsMatchIdentifier(claims, id) {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": "forbidden",
		})
	}

	user, err := c.Repo.Users().GetByIdentifier(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "user not found"))
	}

	return ctx.JSON(router.StatusOK, user)
}

// UpdatePayload carries the mutable user fields
type UpdatePayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone_number"`
	Address   string `json:"address"`
}

// Validate will validate the payload
func (r UpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(validatePhone)),
	)
}

// Update modifies a user's own profile fields. Admins can update anyone.
func (c *UsersController) Update(ctx router.Context) error {
	id := ctx.Param("id")

	claims, ok := claimsFromRequest(ctx, c.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "missing identity",
		})
	}

	if !claims.IsAtLeast(string(auth.RoleAdmin)) && !claimsMatchIdentifier(claims, id) {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": "forbidden",
		})
	}

	payload := new(UpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	user, err := c.Repo.Users().GetByIdentifier(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "user not found"))
	}

	if payload.FirstName != "" {
		user.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		user.LastName = payload.LastName
	}
	if payload.Phone != "" {
		user.Phone = payload.Phone
	}
	if payload.Address != "" {
		user.Address = payload.Address
	}

	updated, err := c.Repo.Users().Update(ctx.Context(), user)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user"))
	}

	return ctx.JSON(router.StatusOK, updated)
}

// List returns all users, admin only.
func (c *UsersController) List(ctx router.Context) error {
	users, err := c.Repo.Users().List(ctx.Context())
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": users,
	})
}

// Delete soft deletes a user, admin only.
func (c *UsersController) Delete(ctx router.Context) error {
	id := ctx.Param("id")

	user, err := c.Repo.Users().GetByIdentifier(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryNotFound, "user not found"))
	}

	if err := c.Repo.Users().Delete(ctx.Context(), user.ID); err != nil {
		return respondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user"))
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// claimsMatchIdentifier reports whether the path identifier addresses the
// caller's own account. Self lookups may use the row id or the login email
// carried in the token subject.
func claimsMatchIdentifier(claims auth.AuthClaims, identifier string) bool {
	return claims.UserID() == identifier || claims.Subject() == identifier
}

func validatePhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return errors.New("must be a valid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

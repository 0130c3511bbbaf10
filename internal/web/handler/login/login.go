// Package login serves the local and directory login endpoints. Both hand out
// the same bearer token; every failed attempt gets the same generic denial so
// the response never leaks whether the account exists or is disabled.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler"
)

const (
	// Path is the local login endpoint.
	Path = "/auth/login"

	// LDAPPath is the directory login endpoint.
	LDAPPath = "/auth/login/ldap"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	local     *auth.LocalProvider
	ldap      *auth.LDAPProvider
	issuer    *auth.TokenIssuer
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ldapLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Init initializes the login handler. The ldap provider may be nil when
// directory login is disabled.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	local *auth.LocalProvider,
	ldap *auth.LDAPProvider,
	issuer *auth.TokenIssuer,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.local = local
	s.ldap = ldap
	s.issuer = issuer
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Post(handler.RouterRootPath, s.Post)
		router.Post("/ldap", s.PostLDAP)
	})

	return nil
}

// Post handles a local email and password login.
func (s *Service) Post(c *fiber.Ctx) error {
	var req loginRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email and password are required",
		})
	}

	user, err := s.local.Authenticate(req.Email, req.Password)
	if err != nil {
		return s.denyLogin(c, req.Email, err)
	}

	return s.respondWithToken(c, user, false)
}

// PostLDAP handles a directory login by username and password.
func (s *Service) PostLDAP(c *fiber.Ctx) error {
	if s.ldap == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "LDAP authentication is not enabled",
		})
	}

	var req ldapLoginRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username and password are required",
		})
	}

	user, err := s.ldap.Authenticate(req.Username, req.Password)
	if err != nil {
		return s.denyLogin(c, req.Username, err)
	}

	return s.respondWithToken(c, user, true)
}

// denyLogin maps every authentication failure to the same generic 401. The
// concrete reason (bad password, unknown user, disabled account, directory
// trouble) only goes to the log.
func (s *Service) denyLogin(c *fiber.Ctx, identity string, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info().Str("identity", identity).Msg("login denied: invalid credentials")
	case errors.Is(err, auth.ErrAccountDisabled):
		log.Info().Str("identity", identity).Msg("login denied: account disabled")
	case errors.Is(err, auth.ErrMultipleUsersFound):
		log.Warn().Str("identity", identity).Msg("login denied: ambiguous directory entry")
	default:
		log.Error().Err(err).Str("identity", identity).Msg("login failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid credentials",
	})
}

func (s *Service) respondWithToken(c *fiber.Ctx, user *models.User, ldapUser bool) error {
	token, err := s.issuer.Mint(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to mint token")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	payload := fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	}
	if ldapUser {
		payload["ldapUser"] = true
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"user":         payload,
	})
}

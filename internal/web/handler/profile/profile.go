// Package profile serves the authenticated user's profile and the role gated
// demo routes.
package profile

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler"
)

const (
	// Path is the profile endpoint.
	Path = "/auth/profile"

	// AdminPath is reachable by admins only.
	AdminPath = "/auth/admin"

	// ManagementPath is reachable by admins and managers.
	ManagementPath = "/auth/management"
)

// Service is the profile handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler and its role gated routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, issuer *auth.TokenIssuer) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, auth.RequireAuth(issuer), s.Get)
	app.Get(AdminPath, auth.RequireAuth(issuer), auth.RequireRoles(models.RoleAdmin), s.GetAdmin)
	app.Get(ManagementPath, auth.RequireAuth(issuer),
		auth.RequireRoles(models.RoleAdmin, models.RoleManager), s.GetManagement)

	return nil
}

// Get returns the profile of the authenticated user. The token claims name
// the account; the rest of the profile comes from the database.
func (s *Service) Get(c *fiber.Ctx) error {
	claims := auth.ClaimsFromContext(c)

	userID, err := claims.UserID()
	if err != nil {
		log.Warn().Err(err).Msg("token with malformed subject")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthenticated",
		})
	}

	var user models.User

	err = s.db.First(&user, userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// account removed after the token was minted
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthenticated",
		})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load profile")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"tel":         user.Tel,
		"role":        user.Role,
		"auth_source": user.AuthSource,
		"active":      user.Active,
	})
}

// GetAdmin is the admin only demo route.
func (s *Service) GetAdmin(c *fiber.Ctx) error {
	claims := auth.ClaimsFromContext(c)

	return c.JSON(fiber.Map{
		"message": "Admin access granted",
		"email":   claims.Email,
	})
}

// GetManagement is the management demo route for admins and managers.
func (s *Service) GetManagement(c *fiber.Ctx) error {
	claims := auth.ClaimsFromContext(c)

	return c.JSON(fiber.Map{
		"message": "Management access granted",
		"email":   claims.Email,
	})
}

// Package register serves public user registration.
package register

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

// Path is the registration endpoint.
const Path = "/user/register"

// Service is the register handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	local     *auth.LocalProvider
	validator *validator.Validate
}

// Handler is the register handler.
var Handler = Service{}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
	Tel      string `json:"tel"      validate:"omitempty,max=30"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN MANAGER USER"`
}

// Init initializes the register handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, local *auth.LocalProvider) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.local = local
	s.validator = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post handles a registration request. New accounts default to the USER role.
func (s *Service) Post(c *fiber.Ctx) error {
	var req registerRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := s.validator.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"field":   validationErrors[0].Field(),
			})
		}

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
		})
	}

	user, err := s.local.CreateUser(req.Email, req.Password, req.Name, req.Tel, models.Role(req.Role))

	if errors.Is(err, auth.ErrEmailExists) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Email already exists",
		})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

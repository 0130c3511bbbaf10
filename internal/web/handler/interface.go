package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/config"
)

// Service is the interface for a web handler service. Handlers that depend on
// more than the app, config and database take the extras as additional Init
// arguments.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error
}

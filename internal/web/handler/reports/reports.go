// Package reports serves the user report endpoints. The summary is available
// to every authenticated user; the rendered documents are restricted to
// admins and managers.
package reports

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
	"github.com/borntodev-academy/go-auth-api/internal/report"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler"
)

// Path is the route group for report endpoints.
const Path = "/reports"

// Service is the reports handler service.
type Service struct {
	handler.Service
	cfg     *config.Config
	db      *gorm.DB
	reports *report.Service
}

// Handler is the reports handler.
var Handler = Service{}

// Init initializes the reports handler.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	reports *report.Service,
	issuer *auth.TokenIssuer,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.reports = reports

	group := app.Group(Path, auth.RequireAuth(issuer))
	group.Get("/summary", s.GetSummary)

	gated := group.Group("/users", auth.RequireRoles(models.RoleAdmin, models.RoleManager))
	gated.Get("/pdf", s.GetUsersPDF)
	gated.Get("/excel", s.GetUsersExcel)

	return nil
}

// GetSummary returns the aggregate user summary. Served from a short lived
// cache inside the report service.
func (s *Service) GetSummary(c *fiber.Ctx) error {
	summary, err := s.reports.Summary()
	if err != nil {
		log.Error().Err(err).Msg("failed to build summary")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(summary)
}

// GetUsersPDF renders the user report as a PDF download.
func (s *Service) GetUsersPDF(c *fiber.Ctx) error {
	buf, err := s.reports.PDF()
	if err != nil {
		log.Error().Err(err).Msg("failed to render pdf report")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, s.reports.PDFFilename()))

	return c.Send(buf.Bytes())
}

// GetUsersExcel renders the user report as an xlsx download.
func (s *Service) GetUsersExcel(c *fiber.Ctx) error {
	buf, err := s.reports.Excel()
	if err != nil {
		log.Error().Err(err).Msg("failed to render excel report")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	c.Set(fiber.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, s.reports.ExcelFilename()))

	return c.Send(buf.Bytes())
}

package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// headerFillColor is the header background used on both report sheets.
const headerFillColor = "4F81BD"

var userSheetHeaders = []string{"ID", "Email", "Name", "Tel", "Role", "Active", "Auth Source", "Created At"}

// Excel renders the full user report as an xlsx workbook with a Users sheet
// and a Summary sheet.
func (s *Service) Excel() (*bytes.Buffer, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}

	summary, err := s.Summary()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close excel file")
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create header style")
	}

	if err := s.writeUsersSheet(f, headerStyle, users); err != nil {
		return nil, err
	}

	if err := s.writeSummarySheet(f, headerStyle, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to write excel buffer")
	}

	return buf, nil
}

func (s *Service) writeUsersSheet(f *excelize.File, headerStyle int, users []models.User) error {
	const sheet = "Users"

	// The default sheet becomes the Users sheet.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "failed to rename users sheet")
	}

	for col, header := range userSheetHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "failed to build cell name")
		}

		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrap(err, "failed to write header cell")
		}
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(userSheetHeaders), 1)
	if err != nil {
		return errors.Wrap(err, "failed to build cell name")
	}

	if err := f.SetCellStyle(sheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return errors.Wrap(err, "failed to style header row")
	}

	for i, user := range users {
		row := i + 2 //nolint:mnd
		values := []any{
			user.ID,
			user.Email,
			user.Name,
			user.Tel,
			string(user.Role),
			user.Active,
			string(user.AuthSource),
			user.CreatedAt.Format(time.RFC3339),
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return errors.Wrap(err, "failed to build cell name")
			}

			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrap(err, "failed to write user cell")
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "C", 30); err != nil { //nolint:mnd
		return errors.Wrap(err, "failed to set column width")
	}

	if err := f.SetColWidth(sheet, "H", "H", 22); err != nil { //nolint:mnd
		return errors.Wrap(err, "failed to set column width")
	}

	return nil
}

func (s *Service) writeSummarySheet(f *excelize.File, headerStyle int, summary *Summary) error {
	const sheet = "Summary"

	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Total Users", summary.TotalUsers},
		{"Active Users", summary.ActiveUsers},
		{"Admins", summary.AdminCount},
		{"Managers", summary.ManagerCount},
		{"Users", summary.UserCount},
		{"Generated At", summary.GeneratedAt.Format(time.RFC3339)},
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return errors.Wrap(err, "failed to build cell name")
			}

			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrap(err, "failed to write summary cell")
			}
		}
	}

	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return errors.Wrap(err, "failed to style header row")
	}

	if err := f.SetColWidth(sheet, "A", "B", 20); err != nil { //nolint:mnd
		return errors.Wrap(err, "failed to set column width")
	}

	return nil
}

// ExcelFilename returns a timestamped download name for the workbook.
func (s *Service) ExcelFilename() string {
	return fmt.Sprintf("users-%s.xlsx", s.now().Format("20060102-150405"))
}

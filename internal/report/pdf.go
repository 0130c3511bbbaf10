package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// PDF renders the full user report as an A4 document: a summary block
// followed by one table row per account.
func (s *Service) PDF() (*bytes.Buffer, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}

	summary, err := s.Summary()
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "User Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Generated at "+summary.GeneratedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeSummaryBlock(pdf, summary)
	writeUserTable(pdf, users)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render pdf")
	}

	return &buf, nil
}

func writeSummaryBlock(pdf *fpdf.Fpdf, summary *Summary) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)

	lines := []struct {
		label string
		value int64
	}{
		{"Total users", summary.TotalUsers},
		{"Active users", summary.ActiveUsers},
		{"Admins", summary.AdminCount},
		{"Managers", summary.ManagerCount},
		{"Users", summary.UserCount},
	}

	for _, line := range lines {
		pdf.CellFormat(40, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, strconv.FormatInt(line.value, 10), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
}

func writeUserTable(pdf *fpdf.Fpdf, users []models.User) {
	headers := []string{"ID", "Email", "Name", "Role", "Active", "Source"}
	widths := []float64{12, 60, 48, 24, 16, 20}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(79, 129, 189)
	pdf.SetTextColor(255, 255, 255)

	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}

	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)

	for _, user := range users {
		cells := []string{
			strconv.FormatUint(user.ID, 10),
			user.Email,
			user.Name,
			string(user.Role),
			fmt.Sprintf("%t", user.Active),
			string(user.AuthSource),
		}

		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}

		pdf.Ln(-1)
	}
}

// PDFFilename returns a timestamped download name for the document.
func (s *Service) PDFFilename() string {
	return fmt.Sprintf("users-%s.pdf", s.now().Format("20060102-150405"))
}

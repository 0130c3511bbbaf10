package report

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedReportUsers(t *testing.T, db *gorm.DB) {
	t.Helper()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	users := []models.User{
		{Active: true, Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, CreatedAt: base},
		{Active: true, Email: "manager@example.com", Name: "Manager", Role: models.RoleManager, CreatedAt: base.Add(time.Hour)},
		{Active: true, Email: "user1@example.com", Name: "User One", Role: models.RoleUser, CreatedAt: base.Add(2 * time.Hour)},
		{Active: false, Email: "user2@example.com", Name: "User Two", Role: models.RoleUser, CreatedAt: base.Add(3 * time.Hour)},
		{Active: true, Email: "user3@example.com", Name: "User Three", Role: models.RoleUser, CreatedAt: base.Add(4 * time.Hour)},
		{Active: true, Email: "user4@example.com", Name: "User Four", Role: models.RoleUser, CreatedAt: base.Add(5 * time.Hour)},
	}

	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
}

func TestUsersOrderedNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	seedReportUsers(t, db)

	svc := New(db, 0)

	users, err := svc.Users()
	require.NoError(t, err)
	require.Len(t, users, 6)
	assert.Equal(t, "user4@example.com", users[0].Email)
	assert.Equal(t, "admin@example.com", users[5].Email)
}

func TestSummaryCounts(t *testing.T) {
	db := setupTestDB(t)
	seedReportUsers(t, db)

	svc := New(db, 0)

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 6, summary.TotalUsers)
	assert.EqualValues(t, 5, summary.ActiveUsers)
	assert.EqualValues(t, 1, summary.AdminCount)
	assert.EqualValues(t, 1, summary.ManagerCount)
	assert.EqualValues(t, 4, summary.UserCount)
	require.Len(t, summary.RecentUsers, 5)
	assert.Equal(t, "user4@example.com", summary.RecentUsers[0].Email)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestSummaryCache(t *testing.T) {
	db := setupTestDB(t)
	seedReportUsers(t, db)

	svc := New(db, 30*time.Second)

	clock := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 6, first.TotalUsers)

	// A new account inside the cache window is not visible yet
	require.NoError(t, db.Create(&models.User{
		Active: true, Email: "late@example.com", Role: models.RoleUser,
	}).Error)

	clock = clock.Add(10 * time.Second)

	cached, err := svc.Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 6, cached.TotalUsers)

	// After the window the summary is recomputed
	clock = clock.Add(30 * time.Second)

	fresh, err := svc.Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 7, fresh.TotalUsers)
}

func TestExcel(t *testing.T) {
	db := setupTestDB(t)
	seedReportUsers(t, db)

	svc := New(db, 0)

	buf, err := svc.Excel()
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, f.Close())
	}()

	assert.ElementsMatch(t, []string{"Users", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 7) // header plus six accounts
	assert.Equal(t, userSheetHeaders, rows[0])
	assert.Equal(t, "user4@example.com", rows[1][1])

	summaryRows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, summaryRows)
	assert.Equal(t, []string{"Metric", "Value"}, summaryRows[0])
	assert.Equal(t, "Total Users", summaryRows[1][0])
	assert.Equal(t, "6", summaryRows[1][1])
}

func TestPDF(t *testing.T) {
	db := setupTestDB(t)
	seedReportUsers(t, db)

	svc := New(db, 0)

	buf, err := svc.PDF()
	require.NoError(t, err)
	require.NotZero(t, buf.Len())
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"), "output must be a pdf document")
}

func TestFilenames(t *testing.T) {
	svc := New(setupTestDB(t), 0)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 2, 9, 30, 15, 0, time.UTC)
	}

	assert.Equal(t, "users-20250602-093015.xlsx", svc.ExcelFilename())
	assert.Equal(t, "users-20250602-093015.pdf", svc.PDFFilename())
}

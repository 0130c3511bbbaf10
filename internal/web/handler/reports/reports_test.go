package reports

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
	"github.com/borntodev-academy/go-auth-api/internal/report"
)

type testEnv struct {
	app    *fiber.App
	issuer *auth.TokenIssuer
	db     *gorm.DB
}

func setupReportsApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}))

	app := fiber.New()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	svc := &Service{}
	require.NoError(t, svc.Init(app, &config.Config{}, db, report.New(db, 0), issuer))

	users := []models.User{
		{Active: true, Email: "admin@example.com", Role: models.RoleAdmin},
		{Active: true, Email: "manager@example.com", Role: models.RoleManager},
		{Active: true, Email: "user@example.com", Role: models.RoleUser},
		{Active: false, Email: "gone@example.com", Role: models.RoleUser},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}

	return &testEnv{app: app, issuer: issuer, db: db}
}

func (e *testEnv) tokenFor(t *testing.T, email string) string {
	t.Helper()

	var user models.User
	require.NoError(t, e.db.First(&user, "email = ?", email).Error)

	token, err := e.issuer.Mint(&user)
	require.NoError(t, err)

	return token
}

func (e *testEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestGetSummary(t *testing.T) {
	env := setupReportsApp(t)

	t.Run("requires authentication", func(t *testing.T) {
		resp := env.get(t, Path+"/summary", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("available to every authenticated role", func(t *testing.T) {
		resp := env.get(t, Path+"/summary", env.tokenFor(t, "user@example.com"))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.EqualValues(t, 4, body["total_users"])
		assert.EqualValues(t, 3, body["active_users"])
		assert.EqualValues(t, 1, body["admin_count"])
	})
}

func TestGetUsersExcel(t *testing.T) {
	env := setupReportsApp(t)

	t.Run("denies the user role", func(t *testing.T) {
		resp := env.get(t, Path+"/users/excel", env.tokenFor(t, "user@example.com"))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("serves a workbook to managers", func(t *testing.T) {
		resp := env.get(t, Path+"/users/excel", env.tokenFor(t, "manager@example.com"))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, f.Close())
		}()

		assert.ElementsMatch(t, []string{"Users", "Summary"}, f.GetSheetList())
	})
}

func TestGetUsersPDF(t *testing.T) {
	env := setupReportsApp(t)

	t.Run("denies the user role", func(t *testing.T) {
		resp := env.get(t, Path+"/users/pdf", env.tokenFor(t, "user@example.com"))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("serves a document to admins", func(t *testing.T) {
		resp := env.get(t, Path+"/users/pdf", env.tokenFor(t, "admin@example.com"))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))

		content, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), "%PDF"), "body must be a pdf document")
	})
}

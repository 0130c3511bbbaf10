package register

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

func setupRegisterApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}), "failed to migrate user model")

	app := fiber.New()
	cfg := &config.Config{}

	svc := &Service{}
	require.NoError(t, svc.Init(app, cfg, db, auth.NewLocalProvider(db)))

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, Path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body
}

func TestPostRegister(t *testing.T) {
	testCases := []struct {
		name            string
		body            string
		seedEmail       string
		expectedStatus  int
		expectedMessage string
		expectedRole    models.Role
	}{
		{
			name:           "defaults to user role",
			body:           `{"email":"new@example.com","password":"secret1","name":"New","tel":"0812345678"}`,
			expectedStatus: fiber.StatusCreated,
			expectedRole:   models.RoleUser,
		},
		{
			name:           "explicit role",
			body:           `{"email":"mgr@example.com","password":"secret1","role":"MANAGER"}`,
			expectedStatus: fiber.StatusCreated,
			expectedRole:   models.RoleManager,
		},
		{
			name:            "duplicate email",
			body:            `{"email":"taken@example.com","password":"secret1"}`,
			seedEmail:       "taken@example.com",
			expectedStatus:  fiber.StatusConflict,
			expectedMessage: "Email already exists",
		},
		{
			name:            "password too short",
			body:            `{"email":"short@example.com","password":"abc"}`,
			expectedStatus:  fiber.StatusBadRequest,
			expectedMessage: "Validation failed",
		},
		{
			name:            "malformed email",
			body:            `{"email":"not-an-email","password":"secret1"}`,
			expectedStatus:  fiber.StatusBadRequest,
			expectedMessage: "Validation failed",
		},
		{
			name:            "unknown role",
			body:            `{"email":"odd@example.com","password":"secret1","role":"ROOT"}`,
			expectedStatus:  fiber.StatusBadRequest,
			expectedMessage: "Validation failed",
		},
		{
			name:            "invalid json",
			body:            `{"email":`,
			expectedStatus:  fiber.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, db := setupRegisterApp(t)

			if tc.seedEmail != "" {
				_, err := auth.NewLocalProvider(db).CreateUser(tc.seedEmail, "whatever1", "", "", models.RoleUser)
				require.NoError(t, err)
			}

			resp := postJSON(t, app, tc.body)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			body := decodeBody(t, resp)

			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, body["message"])

				return
			}

			assert.Equal(t, string(tc.expectedRole), body["role"])
			assert.NotContains(t, body, "password")
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	app, db := setupRegisterApp(t)

	resp := postJSON(t, app, `{"email":"flow@example.com","password":"secret1","name":"Flow"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The fresh account logs in with the registered password and gets USER
	user, err := auth.NewLocalProvider(db).Authenticate("flow@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	// Deactivated accounts are denied with the same credentials
	require.NoError(t, auth.NewLocalProvider(db).DeactivateUser(user.ID))

	_, err = auth.NewLocalProvider(db).Authenticate("flow@example.com", "secret1")
	require.ErrorIs(t, err, auth.ErrAccountDisabled)
}

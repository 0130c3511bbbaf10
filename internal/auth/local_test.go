package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedUsers inserts test data into the database.
func seedUsers(t *testing.T, db *gorm.DB, users []models.User) {
	t.Helper()

	for i := range users {
		err := db.Create(&users[i]).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestLocalAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	provider := NewLocalProvider(db)

	testCases := []struct {
		name          string
		email         string
		password      string
		seedData      []models.User
		expectedError error
	}{
		{
			name:          "unknown email",
			email:         "nobody@example.com",
			password:      "irrelevant",
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrong-password",
			seedData: []models.User{
				{
					Active:   true,
					Email:    "alice@example.com",
					Password: models.HashPassword("correct-password"),
					Role:     models.RoleUser,
				},
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "ldap sourced account never matches locally",
			email:    "directory@example.com",
			password: "",
			seedData: []models.User{
				{
					Active:     true,
					Email:      "directory@example.com",
					Password:   "",
					Role:       models.RoleUser,
					AuthSource: models.AuthSourceLDAP,
				},
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "disabled account with correct password",
			email:    "disabled@example.com",
			password: "correct-password",
			seedData: []models.User{
				{
					Active:   false,
					Email:    "disabled@example.com",
					Password: models.HashPassword("correct-password"),
					Role:     models.RoleUser,
				},
			},
			expectedError: ErrAccountDisabled,
		},
		{
			name:     "successful login",
			email:    "alice@example.com",
			password: "correct-password",
			seedData: []models.User{
				{
					Active:   true,
					Email:    "alice@example.com",
					Password: models.HashPassword("correct-password"),
					Name:     "Alice",
					Role:     models.RoleAdmin,
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			db.Exec("DELETE FROM users")

			if tc.seedData != nil {
				seedUsers(t, db, tc.seedData)
			}

			user, err := provider.Authenticate(tc.email, tc.password)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tc.email, user.Email)
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	provider := NewLocalProvider(db)

	testCases := []struct {
		name          string
		email         string
		password      string
		displayName   string
		role          models.Role
		seedData      []models.User
		expectedError error
		expectedRole  models.Role
	}{
		{
			name:         "default role is user",
			email:        "new@example.com",
			password:     "secret",
			displayName:  "New User",
			expectedRole: models.RoleUser,
		},
		{
			name:         "explicit role is kept",
			email:        "boss@example.com",
			password:     "secret",
			displayName:  "The Boss",
			role:         models.RoleAdmin,
			expectedRole: models.RoleAdmin,
		},
		{
			name:     "duplicate email",
			email:    "taken@example.com",
			password: "secret",
			seedData: []models.User{
				{Active: true, Email: "taken@example.com", Role: models.RoleUser},
			},
			expectedError: ErrEmailExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db.Exec("DELETE FROM users")

			if tc.seedData != nil {
				seedUsers(t, db, tc.seedData)
			}

			user, err := provider.CreateUser(tc.email, tc.password, tc.displayName, "", tc.role)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, user)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotZero(t, user.ID)
			assert.Equal(t, tc.email, user.Email)
			assert.Equal(t, tc.expectedRole, user.Role)
			assert.Equal(t, models.AuthSourceLocal, user.AuthSource)
			assert.True(t, user.Active)
			assert.True(t, user.VerifyPassword(tc.password), "stored hash must verify")

			// The fresh account must be able to log in
			authed, err := provider.Authenticate(tc.email, tc.password)
			require.NoError(t, err)
			assert.Equal(t, user.ID, authed.ID)
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	provider := NewLocalProvider(db)

	seedUsers(t, db, []models.User{
		{Active: true, Email: "alice@example.com", Name: "Alice", Role: models.RoleUser},
	})

	user, err := provider.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = provider.GetUserByEmail("nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeactivateActivateUser(t *testing.T) {
	db := setupTestDB(t)
	provider := NewLocalProvider(db)

	user, err := provider.CreateUser("toggle@example.com", "secret", "Toggle", "", models.RoleUser)
	require.NoError(t, err)

	require.NoError(t, provider.DeactivateUser(user.ID))

	_, err = provider.Authenticate("toggle@example.com", "secret")
	require.ErrorIs(t, err, ErrAccountDisabled)

	require.NoError(t, provider.ActivateUser(user.ID))

	authed, err := provider.Authenticate("toggle@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

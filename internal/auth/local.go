package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
// An unknown email, a wrong password and a disabled account all deny the
// login; only the disabled case is reported as ErrAccountDisabled so the
// caller can log it, the HTTP layer folds both into one generic denial.
func (p *LocalProvider) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	// Verify password first. LDAP sourced accounts have an empty hash and
	// always fail here.
	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return &user, nil
}

// CreateUser creates a new local user with a hashed password.
func (p *LocalProvider) CreateUser(email, password, name, tel string, role models.Role) (*models.User, error) {
	// Check if user already exists
	var existingUser models.User

	err := p.db.Where("email = ?", email).First(&existingUser).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Active:     true,
		Email:      email,
		Password:   models.HashPassword(password),
		Name:       name,
		Tel:        tel,
		Role:       role,
		AuthSource: models.AuthSourceLocal,
	}

	if err := p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (p *LocalProvider) GetUserByEmail(email string) (*models.User, error) {
	var user models.User

	err := p.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// DeactivateUser deactivates a user account.
func (p *LocalProvider) DeactivateUser(userID uint64) error {
	return p.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("active", false).Error
}

// ActivateUser activates a user account.
func (p *LocalProvider) ActivateUser(userID uint64) error {
	return p.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("active", true).Error
}

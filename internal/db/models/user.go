package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource represents the authentication source for a user account.
// It indicates how the user authenticates (local database or LDAP).
type AuthSource string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceLDAP indicates the user authenticates via LDAP or Active Directory.
	AuthSourceLDAP AuthSource = "ldap"
)

// Role represents the single role assigned to a user account.
type Role string

const (
	// RoleAdmin grants access to all role gated routes.
	RoleAdmin Role = "ADMIN"
	// RoleManager grants access to management routes.
	RoleManager Role = "MANAGER"
	// RoleUser is the default role for new accounts.
	RoleUser Role = "USER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

// User represents a user account in the system.
// Users can authenticate via local database or LDAP and carry exactly
// one role that role gated routes check against.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active and can log in.
	Active bool
	// Email is the unique external facing identifier across both auth sources.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password. It is empty for LDAP sourced
	// accounts, which therefore never pass a local password check.
	Password string `gorm:"size:255"`
	// Name is the user's display name.
	Name string `gorm:"size:100"`
	// Tel is the user's phone number.
	Tel string `gorm:"size:30"`
	// Role is the single role assigned to this user.
	Role Role `gorm:"type:varchar(20);not null;default:'USER'"`
	// AuthSource indicates how this user authenticates (local or ldap).
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating local user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	// LDAP sourced accounts carry no usable hash and must never match.
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

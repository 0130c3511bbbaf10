package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when a login attempt fails because of a
	// wrong password, an unknown user or a failed directory bind. The reasons
	// are deliberately not distinguishable by the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrAccountDisabled = errors.New("user account is disabled")

	// ErrEmailExists is returned when attempting to register a user with an email that already exists.
	ErrEmailExists = errors.New("user with email already exists")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when a query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrInvalidToken is returned for every bearer token that does not verify:
	// bad signature, expired, malformed. No detail on which check failed.
	ErrInvalidToken = errors.New("invalid token")
)

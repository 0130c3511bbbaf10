// Package main provides the entry point for the authentication backend.
// It initializes and runs a web server using the Fiber framework that
// authenticates users against the local database or an LDAP directory,
// issues bearer tokens, gates routes by role, and serves file uploads and
// user reports. The application uses gorm for data persistence.
package main

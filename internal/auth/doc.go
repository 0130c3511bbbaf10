// Package auth implements credential checking and token handling for the
// application. Two providers are available: LocalProvider verifies argon2id
// password hashes stored in the database, and LDAPProvider binds against a
// directory server and lazily provisions a matching local account on first
// login. TokenIssuer mints and verifies the signed bearer tokens that both
// providers hand out, and the fiber middleware in this package gates routes
// on a valid token and, optionally, on the user's role.
package auth

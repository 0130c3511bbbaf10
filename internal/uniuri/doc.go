// Package uniuri generates cryptographically secure random strings suitable for use as unique identifiers.
// It is used for the on-disk names of uploaded files so that client supplied
// filenames never reach the filesystem.
package uniuri

// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/borntodev-academy/go-auth-api/internal/config"
)

var (
	cfg        config.Config
	configPath string // Path to the configuration directory
)

var rootCmd = &cobra.Command{
	Use:   "go-auth-api",
	Short: "go-auth-api is an authentication backend with local and LDAP login",
	Long: `go-auth-api is a REST authentication backend that issues bearer tokens
for local (email and password) and LDAP logins, gates routes by role, and
serves file uploads and user reports.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

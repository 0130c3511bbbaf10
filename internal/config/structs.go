package config

import (
	"time"

	"github.com/borntodev-academy/go-auth-api/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Upload    Upload
	Report    Report
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool     // disable recover middleware
	Domain         string   // domain name for the webserver
	Port           int      // listening port for the webserver
	ShutDownTime   int      // wait time for shutdown
	URL            string   // base url for the webserver
	CORSOrigins    []string // allowed origins for browser clients
}

// Auth holds bearer token and LDAP settings.
type Auth struct {
	JWTSecret string        // signing secret for bearer tokens, read once at startup
	TokenTTL  time.Duration // validity window of a minted token
	LDAP      LDAP
}

// LDAP holds directory service settings for the LDAP login route.
type LDAP struct {
	Enabled      bool
	Host         string // LDAP server hostname or IP address
	Port         int    // typically 389 for LDAP, 636 for LDAPS
	UseSSL       bool   // enable LDAPS
	UseTLS       bool   // upgrade the connection with StartTLS
	SkipVerify   bool   // skip TLS certificate verification (insecure, for testing only)
	BindDN       string // distinguished name to bind with for performing searches
	BindPassword string // password for the bind DN
	BaseDN       string // base distinguished name for user searches
	UserFilter   string // filter for finding users, {username} is replaced with the login name
	EmailDomain  string // fallback domain when a directory entry carries no mail attribute
	Timeout      int    // connection timeout in seconds
}

// Upload holds settings for the file endpoints.
type Upload struct {
	Dir      string // directory for uploaded files
	MaxFiles int    // maximum number of files accepted per multi upload
}

// Report holds settings for report generation.
type Report struct {
	SummaryCacheTTL time.Duration // how long a computed summary is reused
}

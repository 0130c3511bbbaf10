// Package web wires the fiber application: middleware, metrics, liveness and
// the handler packages, plus start and graceful shutdown.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	fiberlogger "github.com/borntodev-academy/go-auth-api/internal/logger/adapter/fiber"
	"github.com/borntodev-academy/go-auth-api/internal/report"
	"github.com/borntodev-academy/go-auth-api/internal/storage"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler/files"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler/login"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler/profile"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler/register"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler/reports"
)

// CheckAlivePath is the liveness endpoint polled by load balancers.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and shuts the server down
// gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	if len(cfg.Webserver.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.Webserver.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	localProvider := auth.NewLocalProvider(db)

	var ldapProvider *auth.LDAPProvider

	if cfg.Auth.LDAP.Enabled {
		var err error

		ldapProvider, err = auth.NewLDAPProvider(&auth.LDAPConfig{
			Enabled:      cfg.Auth.LDAP.Enabled,
			Host:         cfg.Auth.LDAP.Host,
			Port:         cfg.Auth.LDAP.Port,
			UseSSL:       cfg.Auth.LDAP.UseSSL,
			UseTLS:       cfg.Auth.LDAP.UseTLS,
			SkipVerify:   cfg.Auth.LDAP.SkipVerify,
			BindDN:       cfg.Auth.LDAP.BindDN,
			BindPassword: cfg.Auth.LDAP.BindPassword,
			BaseDN:       cfg.Auth.LDAP.BaseDN,
			UserFilter:   cfg.Auth.LDAP.UserFilter,
			EmailDomain:  cfg.Auth.LDAP.EmailDomain,
			Timeout:      cfg.Auth.LDAP.Timeout,
		}, db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize ldap provider")
		}

		// a dead directory or bad service credentials should be visible at
		// startup, not at first login. Without a service bind there is
		// nothing to verify beyond the dial, so skip the preflight.
		if cfg.Auth.LDAP.BindDN != "" {
			if err := ldapProvider.TestConnection(); err != nil {
				log.Warn().Err(err).Msg("ldap server not reachable")
			}
		}
	}

	store, err := storage.New(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	reportService := report.New(db, cfg.Report.SummaryCacheTTL)

	// init handlers (they register their own routes)
	initHandlers(app, cfg, db, localProvider, ldapProvider, issuer, store, reportService)

	return service
}

func initHandlers(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	localProvider *auth.LocalProvider,
	ldapProvider *auth.LDAPProvider,
	issuer *auth.TokenIssuer,
	store *storage.Store,
	reportService *report.Service,
) {
	if err := login.Handler.Init(app, cfg, db, localProvider, ldapProvider, issuer); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	if err := profile.Handler.Init(app, cfg, db, issuer); err != nil {
		log.Fatal().Err(err).Msg("failed to init profile handler")
	}

	if err := register.Handler.Init(app, cfg, db, localProvider); err != nil {
		log.Fatal().Err(err).Msg("failed to init register handler")
	}

	if err := files.Handler.Init(app, cfg, db, store, issuer); err != nil {
		log.Fatal().Err(err).Msg("failed to init files handler")
	}

	if err := reports.Handler.Init(app, cfg, db, reportService, issuer); err != nil {
		log.Fatal().Err(err).Msg("failed to init reports handler")
	}
}

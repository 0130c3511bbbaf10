package fiber_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/borntodev-academy/go-auth-api/internal/logger"
	fiberlogger "github.com/borntodev-academy/go-auth-api/internal/logger/adapter/fiber"
)

func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config: logger.Log{
			AppName:     "test",
			ServiceName: "test",
		},
	}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if resp.Header.Get("X-Performance") == "" {
		t.Error("expected X-Performance header to be set")
	}
}

func TestAccessLogMiddlewareNextSkips(t *testing.T) {
	app := fiber.New()
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(_ *fiber.Ctx) bool { return true },
	}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.Header.Get("X-Performance") != "" {
		t.Error("middleware should have been skipped")
	}
}

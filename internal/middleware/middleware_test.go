package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signed(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"aud":   "authenticated",
		"exp":   exp.Unix(),
		"email": sub + "@example.com",
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	verifier := auth.NewJWTVerifier(testSecret)
	policy := auth.NewPolicy([]string{"admin-1"})
	app.Use(AuthRequired(verifier, policy, nil))
	app.Get("/me", func(c *fiber.Ctx) error {
		p, err := httpx.Principal(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": p.ID, "admin": p.IsAdmin()})
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newAuthApp()
	valid := signed(t, "user-1", time.Now().Add(time.Hour))
	expired := signed(t, "user-1", time.Now().Add(-time.Hour))

	tests := []struct {
		name       string
		header     string
		upgrade    bool
		query      string
		wantStatus int
		wantCode   string
	}{
		{"Missing", "", false, "", 401, "missing_access_token"},
		{"Wrong scheme", "Basic abc", false, "", 401, "invalid_authorization"},
		{"Garbage token", "Bearer abc", false, "", 401, "invalid_access_token"},
		{"Expired", "Bearer " + expired, false, "", 401, "token_expired"},
		{"Valid", "Bearer " + valid, false, "", 200, ""},
		{"Query token ignored without upgrade", "", false, "?token=" + valid, 401, "missing_access_token"},
		{"Query token on websocket upgrade", "", true, "?token=" + valid, 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				var body httpx.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name       string
		sub        string
		wantStatus int
	}{
		{"Admin", "admin-1", 204},
		{"Ordinary user", "user-1", 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+signed(t, tt.sub, time.Now().Add(time.Hour)))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	bare := fiber.New()
	bare.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error { return nil })
	resp, err := bare.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestOriginAllowed(t *testing.T) {
	app := fiber.New()
	app.Use(OriginAllowed([]string{"https://goalmate.app/", " http://localhost:5173 "}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		origin     string
		wantStatus int
	}{
		{"", 200},
		{"https://goalmate.app", 200},
		{"http://localhost:5173", 200},
		{"https://evil.example", 403},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, "origin %q", tt.origin)
	}

	open := fiber.New()
	open.Use(OriginAllowed(nil))
	open.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	resp, err := open.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"Validation", apperr.Validation("Emoji is required"), 400, "validation", "Emoji is required"},
		{"NotFound", apperr.NotFound("group not found"), 404, "not_found", "group not found"},
		{"Auth", apperr.Auth("Invalid login credentials"), 401, "unauthorized", "Invalid login credentials"},
		{"Forbidden", apperr.Forbidden("You cannot leave the admin group."), 403, "forbidden", "You cannot leave the admin group."},
		{"AlreadySet", apperr.AlreadySet("Education level is already set and cannot be changed."), 409, "already_set", "Education level is already set and cannot be changed."},
		{"Conflict with code", apperr.Conflict("membership already exists", "23505", nil), 409, "conflict:23505", "membership already exists"},
		{"Upstream", apperr.Upstream("Failed to generate AI response", "500", errors.New("boom")), 502, "upstream:500", "Failed to generate AI response"},
		{"Upstream store cause", apperr.Upstream("store request failed", "42P01", errors.New(`relation "secrets" does not exist`)), 502, "upstream:42P01", "store request failed"},
		{"Bare cause", &apperr.Error{Kind: apperr.KindUpstream, Err: errors.New("dial tcp 10.0.0.5:5432")}, 502, "upstream", "Bad Gateway"},
		{"Quota", apperr.QuotaExceeded("AI service quota exceeded.", errors.New("429")), 429, "quota_exceeded", "AI service quota exceeded."},
		{"Unknown", errors.New("db password is hunter2"), 500, "internal_error", "Internal server error"},
		{"Fiber", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "", "Request Entity Too Large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestFromErrorKeepsCauseForLogs(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	var logged error
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		logged, _ = c.Locals(LocalError).(error)
		return err
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return FromError(c, apperr.Upstream("store request failed", "", cause))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "10.0.0.5")
	assert.ErrorIs(t, logged, cause)
}

func TestPrincipalLocal(t *testing.T) {
	app := fiber.New()
	app.Get("/with", func(c *fiber.Ctx) error {
		c.Locals(LocalPrincipal, auth.NewPrincipal(auth.Identity{ID: "u1"}, auth.RoleUser, "t"))
		p, err := Principal(c)
		if err != nil {
			return err
		}
		return c.SendString(p.ID)
	})
	app.Get("/without", func(c *fiber.Ctx) error {
		if _, err := Principal(c); err == nil {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusUnauthorized)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/with", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/without", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

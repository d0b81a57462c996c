// Package auth talks to the hosted identity provider and turns bearer tokens
// into principals.
package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// Identity is the user as reported by the identity provider.
type Identity struct {
	ID           string
	Email        string
	Name         string
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// Session is the outcome of sign-up or sign-in. AccessToken is empty when the
// provider requires email confirmation before issuing one.
type Session struct {
	AccessToken string
	User        Identity
}

type Client interface {
	GetUser(ctx context.Context, token string) (*Identity, error)
	SignUp(ctx context.Context, email, password, name string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// SupabaseClient implements Client against the GoTrue REST API.
type SupabaseClient struct {
	baseURL string
	anonKey string
	timeout time.Duration
}

func NewSupabaseClient(baseURL, anonKey string, timeout time.Duration) *SupabaseClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey: anonKey,
		timeout: timeout,
	}
}

type gotrueUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

func (u gotrueUser) identity() Identity {
	return Identity{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.UserMetadata.Name,
		CreatedAt:    u.CreatedAt,
		LastSignInAt: u.LastSignInAt,
	}
}

// gotrueSession covers both sign-up shapes: a session with a nested user, or
// the bare user when confirmation is pending.
type gotrueSession struct {
	AccessToken string      `json:"access_token"`
	User        *gotrueUser `json:"user"`
	gotrueUser
}

func (s gotrueSession) session() (*Session, error) {
	u := s.gotrueUser
	if s.User != nil {
		u = *s.User
	}
	if u.ID == "" {
		return nil, apperr.Upstream("no user returned from authentication", "", nil)
	}
	return &Session{AccessToken: s.AccessToken, User: u.identity()}, nil
}

type gotrueError struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *SupabaseClient) GetUser(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Auth("missing access token")
	}
	a := fiber.Get(c.baseURL + "/user")
	a.Set(fiber.HeaderAuthorization, "Bearer "+token)

	var u gotrueUser
	if err := c.do(ctx, a, "get user", &u, false); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, apperr.Auth("no user found")
	}
	id := u.identity()
	return &id, nil
}

func (c *SupabaseClient) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	a := fiber.Post(c.baseURL + "/signup")
	a.JSON(fiber.Map{
		"email":    email,
		"password": password,
		"data":     fiber.Map{"name": name},
	})

	var s gotrueSession
	if err := c.do(ctx, a, "sign up", &s, true); err != nil {
		return nil, err
	}
	return s.session()
}

func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	a := fiber.Post(c.baseURL + "/token?grant_type=password")
	a.JSON(fiber.Map{
		"email":    email,
		"password": password,
	})

	var s gotrueSession
	if err := c.do(ctx, a, "sign in", &s, false); err != nil {
		return nil, err
	}
	return s.session()
}

// SignOut revokes the refresh tokens behind token.
func (c *SupabaseClient) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Auth("missing access token")
	}
	a := fiber.Post(c.baseURL + "/logout")
	a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return c.do(ctx, a, "sign out", nil, false)
}

func (c *SupabaseClient) do(ctx context.Context, a *fiber.Agent, op string, out any, inputErrorsAreValidation bool) error {
	a.Set("apikey", c.anonKey)
	a.Timeout(c.deadline(ctx))
	if err := a.Parse(); err != nil {
		return apperr.Upstream(op+": invalid auth endpoint", "", err)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return apperr.Upstream(op+": auth service unreachable", "", errs[0])
	}
	if status >= 300 {
		return statusError(op, status, body, inputErrorsAreValidation)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Upstream(op+": malformed auth response", "", err)
	}
	return nil
}

func (c *SupabaseClient) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func statusError(op string, status int, body []byte, inputErrorsAreValidation bool) error {
	var ge gotrueError
	_ = json.Unmarshal(body, &ge)

	msg := firstNonEmpty(ge.Msg, ge.Message, ge.ErrorDescription, ge.Err)
	if msg == "" {
		msg = op + " failed"
	}
	code := firstNonEmpty(ge.ErrorCode, ge.Err)

	switch {
	case status == fiber.StatusTooManyRequests || status >= 500:
		return apperr.Upstream(msg, code, nil)
	case inputErrorsAreValidation && (status == fiber.StatusBadRequest || status == fiber.StatusUnprocessableEntity):
		return &apperr.Error{Kind: apperr.KindValidation, Message: msg, Code: code}
	case status >= 400:
		return &apperr.Error{Kind: apperr.KindAuth, Message: msg, Code: code}
	}
	return apperr.Upstream(msg, code, nil)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `{"id":"u1","email":"ada@example.com","created_at":"2025-01-02T03:04:05Z","last_sign_in_at":"2025-02-01T00:00:00Z","user_metadata":{"name":"Ada"}}`

func newGoTrue(t *testing.T, handler http.HandlerFunc) *SupabaseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSupabaseClient(srv.URL, "anon-key", 2*time.Second)
}

func TestSignInWithPassword(t *testing.T) {
	client := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","user":` + userJSON + `}`))
	})

	s, err := client.SignInWithPassword(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, "Ada", s.User.Name)
	require.NotNil(t, s.User.LastSignInAt)
}

func TestSignUpPendingConfirmation(t *testing.T) {
	client := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)

		var body struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body.Data["name"])

		_, _ = w.Write([]byte(userJSON))
	})

	s, err := client.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken)
	assert.Equal(t, "u1", s.User.ID)
}

func TestGetUser(t *testing.T) {
	client := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(userJSON))
	})

	id, err := client.GetUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, 2025, id.CreatedAt.Year())
}

func TestSignOut(t *testing.T) {
	called := false
	client := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.SignOut(context.Background(), "tok"))
	assert.True(t, called)
	assert.ErrorIs(t, client.SignOut(context.Background(), ""), apperr.ErrAuth)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(c *SupabaseClient) error
		kind   apperr.Kind
		msg    string
	}{
		{
			name:   "Bad credentials",
			status: http.StatusBadRequest,
			body:   `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`,
			call: func(c *SupabaseClient) error {
				_, err := c.SignInWithPassword(context.Background(), "a@b.c", "x")
				return err
			},
			kind: apperr.KindAuth,
			msg:  "Invalid login credentials",
		},
		{
			name:   "Expired token",
			status: http.StatusUnauthorized,
			body:   `{"message":"invalid JWT"}`,
			call: func(c *SupabaseClient) error {
				_, err := c.GetUser(context.Background(), "tok")
				return err
			},
			kind: apperr.KindAuth,
			msg:  "invalid JWT",
		},
		{
			name:   "Weak password on sign-up",
			status: http.StatusUnprocessableEntity,
			body:   `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters"}`,
			call: func(c *SupabaseClient) error {
				_, err := c.SignUp(context.Background(), "a@b.c", "x", "A")
				return err
			},
			kind: apperr.KindValidation,
			msg:  "Password should be at least 6 characters",
		},
		{
			name:   "Rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"msg":"Too many requests"}`,
			call: func(c *SupabaseClient) error {
				_, err := c.SignInWithPassword(context.Background(), "a@b.c", "x")
				return err
			},
			kind: apperr.KindUpstream,
			msg:  "Too many requests",
		},
		{
			name:   "Provider down",
			status: http.StatusBadGateway,
			body:   ``,
			call: func(c *SupabaseClient) error {
				_, err := c.GetUser(context.Background(), "tok")
				return err
			},
			kind: apperr.KindUpstream,
			msg:  "get user failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := tt.call(client)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	client := NewSupabaseClient("http://127.0.0.1:1", "anon", 200*time.Millisecond)
	_, err := client.GetUser(context.Background(), "tok")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

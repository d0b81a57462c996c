package auth

import (
	"context"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":           "5f7c1297-267e-4cd8-98ac-ed27110c65c1",
		"aud":           "authenticated",
		"exp":           time.Now().Add(time.Hour).Unix(),
		"email":         "ada@example.com",
		"role":          "authenticated",
		"user_metadata": map[string]any{"name": "Ada"},
	}
}

func TestJWTVerifierValid(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := signToken(t, testSecret, jwt.SigningMethodHS256, validClaims())

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "5f7c1297-267e-4cd8-98ac-ed27110c65c1", id.ID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.Name)
}

func TestJWTVerifierRejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongAud := validClaims()
	wrongAud["aud"] = "anon"

	noExp := validClaims()
	delete(noExp, "exp")

	noSub := validClaims()
	delete(noSub, "sub")

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"Empty", "", ""},
		{"Garbage", "not-a-jwt", "invalid_access_token"},
		{"Wrong secret", signToken(t, "another-secret", jwt.SigningMethodHS256, validClaims()), "invalid_access_token"},
		{"Wrong algorithm", signToken(t, testSecret, jwt.SigningMethodHS512, validClaims()), "invalid_access_token"},
		{"Expired", signToken(t, testSecret, jwt.SigningMethodHS256, expired), "token_expired"},
		{"Wrong audience", signToken(t, testSecret, jwt.SigningMethodHS256, wrongAud), "invalid_access_token"},
		{"Missing expiry", signToken(t, testSecret, jwt.SigningMethodHS256, noExp), "invalid_access_token"},
		{"Missing subject", signToken(t, testSecret, jwt.SigningMethodHS256, noSub), ""},
	}

	v := NewJWTVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

type stubClient struct {
	identity *Identity
	err      error
	token    string
}

func (s *stubClient) GetUser(_ context.Context, token string) (*Identity, error) {
	s.token = token
	return s.identity, s.err
}

func (s *stubClient) SignUp(context.Context, string, string, string) (*Session, error) {
	return nil, nil
}

func (s *stubClient) SignInWithPassword(context.Context, string, string) (*Session, error) {
	return nil, nil
}

func (s *stubClient) SignOut(context.Context, string) error { return nil }

func TestRemoteVerifierDelegates(t *testing.T) {
	client := &stubClient{identity: &Identity{ID: "u1"}}
	v := NewRemoteVerifier(client)

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, "tok", client.token)

	client.err = apperr.Auth("invalid JWT")
	_, err = v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, apperr.ErrAuth)
}

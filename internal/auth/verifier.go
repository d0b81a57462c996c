package auth

import (
	"context"
	"errors"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

const supabaseAudience = "authenticated"

// Verifier validates a bearer token and returns who it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type supabaseClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier checks tokens locally with the project's HS256 secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Auth("missing access token")
	}

	var claims supabaseClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &apperr.Error{Kind: apperr.KindAuth, Message: "token expired", Code: "token_expired", Err: err}
		}
		return nil, &apperr.Error{Kind: apperr.KindAuth, Message: "invalid access token", Code: "invalid_access_token", Err: err}
	}
	if claims.Subject == "" {
		return nil, apperr.Auth("token has no subject")
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.UserMetadata.Name,
	}, nil
}

// RemoteVerifier asks the identity provider about every token. Used when no
// signing secret is configured.
type RemoteVerifier struct {
	client Client
}

func NewRemoteVerifier(client Client) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	return v.client.GetUser(ctx, token)
}

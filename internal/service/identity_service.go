package service

import (
	"context"
	"strings"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
	"go.uber.org/zap"
)

const defaultDisplayName = "User"

// AuthResult is returned by sign-up and sign-in. Session is nil when the
// provider withholds a token until the email address is confirmed.
type AuthResult struct {
	User    models.UserSummary `json:"user"`
	Session *string            `json:"session"`
}

type IdentityService struct {
	client auth.Client
	store  repository.Factory
	policy *auth.Policy
	logger *zap.Logger
}

func NewIdentityService(client auth.Client, store repository.Factory, policy *auth.Policy, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{client: client, store: store, policy: policy, logger: logger}
}

func (s *IdentityService) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	name = validation.SanitizeText(name)
	if email == "" || password == "" || name == "" {
		return nil, apperr.Validation("Email, password, and name are required for signup")
	}
	if !validation.ValidateEmail(email) {
		return nil, apperr.Validation("Invalid email address")
	}
	if !validation.ValidatePassword(password) {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	if !validation.ValidateName(name) {
		return nil, apperr.Validation("Name is too long")
	}

	session, err := s.client.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	if session.User.Name == "" {
		session.User.Name = name
	}
	s.ensureProfile(ctx, session.User)
	return newAuthResult(session), nil
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	session, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if session.User.Name == "" {
		session.User.Name = defaultDisplayName
	}
	s.ensureProfile(ctx, session.User)
	return newAuthResult(session), nil
}

// GetCurrent resolves token to the caller's profile, enriched with the stored
// subscription tier and education level and the computed admin flag.
func (s *IdentityService) GetCurrent(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, apperr.Auth("No token provided")
	}
	identity, err := s.client.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	s.ensureProfile(ctx, *identity)

	profile := &models.Profile{
		ID:               identity.ID,
		Email:            identity.Email,
		Name:             identity.Name,
		CreatedAt:        identity.CreatedAt,
		LastSignInAt:     identity.LastSignInAt,
		SubscriptionTier: models.DefaultSubscriptionTier,
		IsAdmin:          s.policy.IsAdmin(identity.ID),
	}

	user, err := s.store.Admin().Users.FindByID(ctx, identity.ID)
	switch {
	case err == nil:
		if strings.TrimSpace(user.Name) != "" {
			profile.Name = user.Name
		}
		if user.SubscriptionTier != "" {
			profile.SubscriptionTier = user.SubscriptionTier
		}
		if user.EducationLevel != nil {
			profile.EducationLevel = user.EducationLevel.Level
		}
	case apperr.IsNotFound(err):
	default:
		return nil, err
	}

	if profile.Name == "" {
		profile.Name = defaultDisplayName
	}
	return profile, nil
}

func (s *IdentityService) SignOut(ctx context.Context, token string) error {
	return s.client.SignOut(ctx, token)
}

// ensureProfile creates the public profile row on first contact. Failures
// are logged and do not fail the calling operation.
func (s *IdentityService) ensureProfile(ctx context.Context, id auth.Identity) {
	name := id.Name
	if name == "" {
		name = defaultDisplayName
	}
	err := s.store.Admin().Users.CreateIfMissing(ctx, &models.User{
		ID:               id.ID,
		Email:            id.Email,
		Name:             name,
		SubscriptionTier: models.DefaultSubscriptionTier,
	})
	if err != nil {
		s.logger.Error("ensure user profile failed", zap.String("user_id", id.ID), zap.Error(err))
	}
}

func newAuthResult(session *auth.Session) *AuthResult {
	result := &AuthResult{
		User: models.UserSummary{
			ID:        session.User.ID,
			Email:     session.User.Email,
			Name:      session.User.Name,
			CreatedAt: session.User.CreatedAt,
		},
	}
	if session.AccessToken != "" {
		token := session.AccessToken
		result.Session = &token
	}
	return result
}

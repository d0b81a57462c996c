package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/google/uuid"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestIdentity returns an identity as the auth provider would report it.
func (h *TestHelper) CreateTestIdentity(id, email, name string) auth.Identity {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" {
		email = "test@example.com"
	}
	signedIn := time.Now().Add(-time.Hour)
	return auth.Identity{
		ID:           id,
		Email:        email,
		Name:         name,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
		LastSignInAt: &signedIn,
	}
}

// CreateTestUser creates a profile row with default values
func (h *TestHelper) CreateTestUser(id, name, email string) *models.User {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		name = "Test User"
	}
	if email == "" {
		email = "test@example.com"
	}
	return &models.User{
		ID:               id,
		Email:            email,
		Name:             name,
		SubscriptionTier: models.DefaultSubscriptionTier,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// AssertKind checks that err carries the given error kind
func (h *TestHelper) AssertKind(err error, kind apperr.Kind, testName string) {
	h.t.Helper()
	if err == nil {
		h.t.Errorf("%s: expected %s error but got nil", testName, kind)
		return
	}
	if got := apperr.KindOf(err); got != kind {
		h.t.Errorf("%s: got %s error (%v), want %s", testName, got, err, kind)
	}
}

// ErrStoreDown is a generic store failure for error injection.
var ErrStoreDown = apperr.Upstream("connection refused", "08006", errors.New("dial tcp: connection refused"))

package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// Handle is a store client bound to one capability. The admin handle runs
// statements with the service credential and bypasses row-level policies. A
// user handle runs every operation in a transaction that carries the caller's
// claims, so policies evaluate against that user.
type Handle struct {
	db     *gorm.DB
	userID string
	role   string
}

func NewAdminHandle(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// NewUserHandle scopes db to userID. An empty role keeps the connection's
// own role and only sets the claim settings.
func NewUserHandle(db *gorm.DB, userID, role string) *Handle {
	return &Handle{db: db, userID: userID, role: role}
}

func (h *Handle) IsAdmin() bool { return h.userID == "" }

func (h *Handle) UserID() string { return h.userID }

// Run executes fn within the handle's scope.
func (h *Handle) Run(ctx context.Context, fn func(db *gorm.DB) error) error {
	db := h.db.WithContext(ctx)
	if h.IsAdmin() {
		return fn(db)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := h.scope(tx); err != nil {
			return err
		}
		return fn(tx)
	})
}

func (h *Handle) scope(tx *gorm.DB) error {
	claims, err := json.Marshal(map[string]string{
		"sub":  h.userID,
		"role": "authenticated",
	})
	if err != nil {
		return err
	}

	if err := tx.Exec(
		"SELECT set_config('request.jwt.claims', ?, true), set_config('request.jwt.claim.sub', ?, true)",
		string(claims), h.userID,
	).Error; err != nil {
		return err
	}

	if h.role == "" {
		return nil
	}
	return tx.Exec("SET LOCAL ROLE " + pgx.Identifier{h.role}.Sanitize()).Error
}

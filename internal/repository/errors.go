package repository

import (
	"context"
	"errors"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translate maps a store error onto the apperr taxonomy. what names the
// entity for the message ("group", "message", ...).
func translate(err error, what string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what + " not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(what+" already exists", pgErr.Code, err)
		case pgerrcode.ForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindNotFound, Message: "referenced record not found", Code: pgErr.Code, Err: err}
		case pgerrcode.InsufficientPrivilege:
			return &apperr.Error{Kind: apperr.KindForbidden, Message: "not allowed", Code: pgErr.Code, Err: err}
		case pgerrcode.InvalidTextRepresentation, pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return &apperr.Error{Kind: apperr.KindValidation, Message: "invalid " + what, Code: pgErr.Code, Err: err}
		}
		return apperr.Upstream("store request failed", pgErr.Code, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Upstream("store request cancelled", "", err)
	}
	return apperr.Upstream("store request failed", "", err)
}

package httpx

import (
	"errors"
	"fmt"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// LocalPrincipal is the fiber locals key the auth middleware stores the
// caller under.
const LocalPrincipal = "principal"

// LocalError holds the error FromError rendered, so the request logger can
// record the cause that was kept out of the response.
const LocalError = "error"

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func RequestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindAlreadySet, apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUpstream:
		return fiber.StatusBadGateway
	case apperr.KindQuotaExceeded:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError writes the response for a service error. Only the error's own
// message reaches the client; wrapped causes and errors outside the taxonomy
// are kept for the request log.
func FromError(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)

	var e *apperr.Error
	if !errors.As(err, &e) {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, "", fe.Message)
		}
		return Internal(c, "internal_error")
	}

	code := e.Kind.String()
	status := StatusOf(e.Kind)
	message := e.Message
	if message == "" {
		message = utils.StatusMessage(status)
	}
	resp := ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestID(c),
	}
	if e.Code != "" {
		resp.Code = code + ":" + e.Code
	}
	return c.Status(status).JSON(resp)
}

func Principal(c *fiber.Ctx) (*auth.Principal, error) {
	v := c.Locals(LocalPrincipal)
	if v == nil {
		return nil, fmt.Errorf("missing local %s", LocalPrincipal)
	}
	p, ok := v.(*auth.Principal)
	if !ok || p == nil {
		return nil, fmt.Errorf("invalid local %s", LocalPrincipal)
	}
	return p, nil
}

package handlers

import (
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	identity *service.IdentityService
}

func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	result, err := h.identity.SignUp(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	result, err := h.identity.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(result)
}

// Me returns the caller's profile enriched with the stored tier and
// education level.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	profile, err := h.identity.GetCurrent(c.UserContext(), principal.Token)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(profile)
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.identity.SignOut(c.UserContext(), principal.Token); err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

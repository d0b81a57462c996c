package handlers

import (
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
)

type EducationHandler struct {
	education *service.EducationService
}

func NewEducationHandler(education *service.EducationService) *EducationHandler {
	return &EducationHandler{education: education}
}

type EducationLevelRequest struct {
	Level string `json:"level"`
}

type educationLevelResponse struct {
	EducationLevel *string `json:"education_level"`
}

// educationLevelWrite is returned by both the self-service and admin writes.
type educationLevelWrite struct {
	UserID         string  `json:"user_id"`
	EducationLevel *string `json:"education_level"`
}

func (h *EducationHandler) GetLevel(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	level, err := h.education.Get(c.UserContext(), principal.ID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	resp := educationLevelResponse{}
	if level != nil && level.Level != nil {
		resp.EducationLevel = level.Level
	}
	return c.JSON(resp)
}

// SetLevel writes the caller's level once. Later attempts get 409.
func (h *EducationHandler) SetLevel(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req EducationLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	level, err := h.education.Set(c.UserContext(), principal.ID, req.Level)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(educationLevelWrite{UserID: level.UserID, EducationLevel: level.Level})
}

func (h *EducationHandler) AdminSetLevel(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req EducationLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	level, err := h.education.AdminSet(c.UserContext(), principal, c.Params("userId"), req.Level)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(educationLevelWrite{UserID: level.UserID, EducationLevel: level.Level})
}

package handlers

import (
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
)

type TutorHandler struct {
	tutor *service.TutorService
}

func NewTutorHandler(tutor *service.TutorService) *TutorHandler {
	return &TutorHandler{tutor: tutor}
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (h *TutorHandler) Chat(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	reply, err := h.tutor.Send(c.UserContext(), principal.ID, req.Message)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"response": reply})
}

func (h *TutorHandler) History(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	turns, err := h.tutor.History(c.UserContext(), principal.ID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"messages": turns})
}

package handlers

import (
	"strconv"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type SendMessageRequest struct {
	Content string  `json:"content"`
	FileURL *string `json:"file_url"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := c.QueryInt("limit", service.DefaultMessageLimit)
	messages, err := h.messages.List(c.UserContext(), principal.ID, c.Params("id"), c.Params("room"), limit)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(messages)
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messages.Create(c.UserContext(), principal.ID, service.CreateMessageInput{
		GroupID:  c.Params("id"),
		RoomName: c.Params("room"),
		Content:  req.Content,
		FileURL:  req.FileURL,
	})
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessageHandler) ToggleReaction(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, ok := messageIDParam(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message ID")
	}

	var req ReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	state, err := h.messages.ToggleReaction(c.UserContext(), messageID, principal.ID, req.Emoji)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(state)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, ok := messageIDParam(c)
	if !ok {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message ID")
	}

	if err := h.messages.AddReadReceipt(c.UserContext(), messageID, principal.ID); err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func messageIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

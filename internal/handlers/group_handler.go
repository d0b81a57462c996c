package handlers

import (
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groups *service.GroupService
}

func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.groups.List(c.UserContext(), principal.ID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(groups)
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	group, err := h.groups.Create(c.UserContext(), principal.ID, req.Name, req.Description)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	group, err := h.groups.Get(c.UserContext(), principal.ID, c.Params("id"))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(group)
}

// GetMyGroups returns only the ids of the groups the caller belongs to.
func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	ids, err := h.groups.MyGroupIDs(c.UserContext(), principal.ID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"group_ids": ids})
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.groups.Join(c.UserContext(), principal.ID, c.Params("id")); err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Joined group successfully"})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.groups.Leave(c.UserContext(), principal.ID, c.Params("id")); err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Left group successfully"})
}

func (h *GroupHandler) GetRooms(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	rooms, err := h.groups.ListRooms(c.UserContext(), principal.ID, c.Params("id"))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(rooms)
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	principal, err := httpx.Principal(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	members, err := h.groups.MembersWithPresence(c.UserContext(), principal.ID, c.Params("id"))
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(members)
}

package users

import (
	"encoding/json"

	usersvc "armory-backend/internal/application/users"
	"armory-backend/internal/domain"
	"armory-backend/internal/middleware"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *usersvc.Service
}

// UpdateRoleRequest body for PATCH /api/v1/users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Create POST /api/v1/users
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req usersvc.CreateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", sanitize(user), nil)
}

// UpdateRole PATCH /api/v1/users/:id/role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	actorID, _ := m["user_id"].(string)
	actorRole, _ := m["role"].(string)

	var req UpdateRoleRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.UpdateRole(c.Context(), usersvc.UpdateRoleInput{
		ActorUserID:  actorID,
		ActorRole:    actorRole,
		TargetUserID: c.Params("id"),
		TargetRole:   req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role updated successfully", sanitize(user), nil)
}

// Get GET /api/v1/users/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	if _, err := uuid.Parse(c.Params("id")); err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched successfully", sanitize(user), nil)
}

// List GET /api/v1/users
func (h *Handlers) List(c *fiber.Ctx) error {
	users, err := h.Service.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, sanitize(&users[i]))
	}
	return response.Success(c, "Users fetched successfully", out, nil)
}

func sanitize(u *domain.User) fiber.Map {
	return fiber.Map{
		"user_id":    u.UserID.String(),
		"fullname":   u.Fullname,
		"email":      u.Email,
		"role":       u.Role,
		"station_id": u.StationID,
	}
}

package deductions

import (
	"encoding/json"

	dedsvc "armory-backend/internal/application/deductions"
	"armory-backend/internal/middleware"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *dedsvc.Service
}

// CreateRequest body for POST /api/v1/deductions.
type CreateRequest struct {
	EmployeeID string  `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
	Month      string  `json:"month"`
}

// UpdateRequest body for PATCH /api/v1/deductions/:id.
type UpdateRequest struct {
	Amount  *float64 `json:"amount"`
	Reason  *string  `json:"reason"`
	Month   *string  `json:"month"`
	Version int64    `json:"version"`
}

// ApproveRequest body for POST /api/v1/deductions/:id/approve.
type ApproveRequest struct {
	Comment string `json:"comment"`
	Version int64  `json:"version"`
}

// Create POST /api/v1/deductions
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return response.Error(c, "Invalid employee id", fiber.StatusBadRequest, nil)
	}
	deduction, err := h.Service.Create(c.Context(), dedsvc.CreateInput{
		EmployeeID: employeeID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Month:      req.Month,
	}, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Deduction created successfully", deduction, nil)
}

// Update PATCH /api/v1/deductions/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid deduction id", fiber.StatusBadRequest, nil)
	}
	var req UpdateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	deduction, err := h.Service.Update(c.Context(), id, req.Version, dedsvc.UpdateInput{
		Amount: req.Amount,
		Reason: req.Reason,
		Month:  req.Month,
	}, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deduction updated successfully", deduction, nil)
}

// Approve POST /api/v1/deductions/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid deduction id", fiber.StatusBadRequest, nil)
	}
	var req ApproveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	deduction, err := h.Service.Approve(c.Context(), id, req.Version, req.Comment, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deduction approved successfully", deduction, nil)
}

// ListForEmployee GET /api/v1/deductions?employee_id=...
func (h *Handlers) ListForEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Query("employee_id"))
	if err != nil {
		return response.Error(c, "Invalid employee id", fiber.StatusBadRequest, nil)
	}
	deductions, err := h.Service.ListForEmployee(c.Context(), employeeID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deductions fetched successfully", deductions, nil)
}

func actorFromSession(c *fiber.Ctx) (dedsvc.Actor, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return dedsvc.Actor{}, fiber.ErrUnauthorized
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return dedsvc.Actor{}, fiber.ErrUnauthorized
	}
	role, _ := m["role"].(string)
	return dedsvc.Actor{ID: id, Role: role}, nil
}

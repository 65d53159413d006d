package employees

import (
	"encoding/json"

	empsvc "armory-backend/internal/application/employees"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *empsvc.Service
}

// Create POST /api/v1/employees
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req empsvc.CreateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	employee, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Employee created successfully", employee, nil)
}

// Get GET /api/v1/employees/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee id", fiber.StatusBadRequest, nil)
	}
	employee, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employee fetched successfully", employee, nil)
}

// ListForStation GET /api/v1/employees?station_id=...
func (h *Handlers) ListForStation(c *fiber.Ctx) error {
	stationID, err := uuid.Parse(c.Query("station_id"))
	if err != nil {
		return response.Error(c, "Invalid station id", fiber.StatusBadRequest, nil)
	}
	employees, err := h.Service.ListForStation(c.Context(), stationID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employees fetched successfully", employees, nil)
}

// Update PATCH /api/v1/employees/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee id", fiber.StatusBadRequest, nil)
	}
	var req empsvc.UpdateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	employee, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employee updated successfully", employee, nil)
}

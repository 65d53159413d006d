package stations

import (
	"encoding/json"

	stationsvc "armory-backend/internal/application/stations"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *stationsvc.Service
}

// Create POST /api/v1/stations
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req stationsvc.CreateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	station, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Station created successfully", station, nil)
}

// Get GET /api/v1/stations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid station id", fiber.StatusBadRequest, nil)
	}
	station, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Station fetched successfully", station, nil)
}

// List GET /api/v1/stations
func (h *Handlers) List(c *fiber.Ctx) error {
	stations, err := h.Service.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stations fetched successfully", stations, nil)
}

// Update PATCH /api/v1/stations/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid station id", fiber.StatusBadRequest, nil)
	}
	var req stationsvc.UpdateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	station, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Station updated successfully", station, nil)
}

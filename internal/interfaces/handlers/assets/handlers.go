package assets

import (
	"encoding/json"

	assetsvc "armory-backend/internal/application/assets"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *assetsvc.Service
}

// Create POST /api/v1/assets
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req assetsvc.CreateInput
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	asset, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Asset created successfully", asset, nil)
}

// Get GET /api/v1/assets/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	asset, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset fetched successfully", asset, nil)
}

// List GET /api/v1/assets?type=weapon
func (h *Handlers) List(c *fiber.Ctx) error {
	assets, err := h.Service.List(c.Context(), c.Query("type"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assets fetched successfully", assets, nil)
}

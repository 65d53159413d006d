package assignments

import (
	"context"
	"encoding/json"
	"time"

	assignsvc "armory-backend/internal/application/assignments"
	"armory-backend/internal/domain"
	"armory-backend/internal/middleware"
	"armory-backend/internal/pkg/apperr"
	"armory-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *assignsvc.Service
}

// CreateRequest body for POST /api/v1/assignments.
type CreateRequest struct {
	HolderType string                `json:"holder_type"`
	HolderID   string                `json:"holder_id"`
	Assets     []assignsvc.AssetInit `json:"assets"`
	Reason     string                `json:"reason"`
	Date       string                `json:"date"`
}

// OpRequest body for issue/consume/return operations.
type OpRequest struct {
	Quantity int    `json:"quantity"`
	Shells   int    `json:"shells"`
	Reason   string `json:"reason"`
	Date     string `json:"date"`
	Version  int64  `json:"version"`
}

// TransferRequest body for POST /api/v1/assignments/:id/transfer.
type TransferRequest struct {
	Quantity   int    `json:"quantity"`
	HolderType string `json:"holder_type"`
	HolderID   string `json:"holder_id"`
	Reason     string `json:"reason"`
	Date       string `json:"date"`
	Version    int64  `json:"version"`
}

// ApproveRequest body for POST /api/v1/assignments/:id/approve.
type ApproveRequest struct {
	Comment string `json:"comment"`
	Version int64  `json:"version"`
}

// Create POST /api/v1/assignments
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	holder, err := parseHolder(req.HolderType, req.HolderID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	date, err := parseDateOrNow(req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	view, err := h.Service.Create(c.Context(), assignsvc.CreateInput{
		Holder: holder,
		Assets: req.Assets,
		Reason: req.Reason,
		Date:   date,
	}, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Assignment created successfully", view, nil)
}

// Get GET /api/v1/assignments/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", fiber.StatusBadRequest, nil)
	}
	view, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment fetched successfully", view, nil)
}

// List GET /api/v1/assignments?holder_type=...&holder_id=...
func (h *Handlers) List(c *fiber.Ctx) error {
	holder, err := parseHolder(c.Query("holder_type"), c.Query("holder_id"))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	records, err := h.Service.ListForHolder(c.Context(), holder)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignments fetched successfully", records, nil)
}

// Issue POST /api/v1/assignments/:id/issue
func (h *Handlers) Issue(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.Service.Issue, "Rounds issued successfully")
}

// Consume POST /api/v1/assignments/:id/consume
func (h *Handlers) Consume(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.Service.Consume, "Rounds consumed successfully")
}

// Return POST /api/v1/assignments/:id/return
func (h *Handlers) Return(c *fiber.Ctx) error {
	return h.ledgerOp(c, h.Service.Return, "Rounds returned successfully")
}

type ledgerOpFunc func(ctx context.Context, id uuid.UUID, expectedVersion int64, in assignsvc.LedgerOpInput, actor assignsvc.Actor) (*assignsvc.OpResult, error)

func (h *Handlers) ledgerOp(c *fiber.Ctx, op ledgerOpFunc, message string) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", fiber.StatusBadRequest, nil)
	}
	var req OpRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	date, err := parseDateOrNow(req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	result, err := op(c.Context(), id, req.Version, assignsvc.LedgerOpInput{
		Quantity: req.Quantity,
		Shells:   req.Shells,
		Reason:   req.Reason,
		Date:     date,
	}, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, result, nil)
}

// Transfer POST /api/v1/assignments/:id/transfer
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", fiber.StatusBadRequest, nil)
	}
	var req TransferRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	to, err := parseHolder(req.HolderType, req.HolderID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	date, err := parseDateOrNow(req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	result, err := h.Service.Transfer(c.Context(), id, req.Version, assignsvc.TransferInput{
		Quantity: req.Quantity,
		To:       to,
		Reason:   req.Reason,
		Date:     date,
	}, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment transferred successfully", result, nil)
}

// Approve POST /api/v1/assignments/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor, err := actorFromSession(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", fiber.StatusBadRequest, nil)
	}
	var req ApproveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	view, err := h.Service.Approve(c.Context(), id, req.Version, req.Comment, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assignment approved successfully", view, nil)
}

func actorFromSession(c *fiber.Ctx) (assignsvc.Actor, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return assignsvc.Actor{}, fiber.ErrUnauthorized
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return assignsvc.Actor{}, fiber.ErrUnauthorized
	}
	role, _ := m["role"].(string)
	return assignsvc.Actor{ID: id, Role: role}, nil
}

func parseHolder(holderType, holderID string) (domain.HolderRef, error) {
	if holderType != domain.HolderTypeEmployee && holderType != domain.HolderTypeStation {
		return domain.HolderRef{}, fiber.NewError(fiber.StatusBadRequest, "holder_type must be employee or station")
	}
	id, err := uuid.Parse(holderID)
	if err != nil {
		return domain.HolderRef{}, fiber.NewError(fiber.StatusBadRequest, "holder_id must be a valid UUID")
	}
	return domain.HolderRef{Type: holderType, ID: id}, nil
}

// parseDateOrNow accepts "2006-01-02" or RFC3339; an omitted date means today.
// A supplied but unparseable date is rejected rather than replaced, since
// ledger entries carry it verbatim.
func parseDateOrNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("date", "must be YYYY-MM-DD or RFC3339")
}

package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/repository"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetHandler serves the planned-vs-realized rollup and the budget
// editing flows (draft from previous month, commit, annual
// distribution).
type BudgetHandler struct {
	store    *repository.Store
	reloader *services.Reloader
	loc      *time.Location
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(store *repository.Store, reloader *services.Reloader, loc *time.Location) *BudgetHandler {
	return &BudgetHandler{store: store, reloader: reloader, loc: loc}
}

// GetRollup handles GET /v1/budget
// Query params: mode (month|year), month, year, basis
func (h *BudgetHandler) GetRollup(c fiber.Ctx) error {
	sel, err := parsePeriodSelection(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	basis, err := parseBasis(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bundle, err := h.reloader.Reload(c.Context(), sel, basis, businessToday(h.loc))
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a newer reload superseded this request",
			})
		}
		log.Printf("budget reload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load budget data",
		})
	}

	return c.JSON(fiber.Map{
		"period": sel,
		"basis":  basis,
		"rollup": bundle.Budget,
	})
}

// DraftFromPrevious handles POST /v1/budget/draft
// Body: {"month": "YYYY-MM"}
// Stages the previous month's lines for the target month without saving.
func (h *BudgetHandler) DraftFromPrevious(c fiber.Ctx) error {
	var req struct {
		Month string `json:"month"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	target, err := models.ParseReferenceMonth(req.Month)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// The source month may sit in the prior year (target = January).
	lines, err := h.store.ListBudgetLines(c.Context(), target.Previous().Year)
	if err != nil {
		log.Printf("budget draft fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load previous budget",
		})
	}

	draft := services.CopyPreviousMonth(lines, target)
	return c.JSON(fiber.Map{
		"month": target.String(),
		"draft": draft,
		"count": len(draft),
	})
}

// CommitRequest is the payload that persists staged budget lines.
type CommitRequest struct {
	Lines []struct {
		Month   string `json:"month"`
		OwnerID string `json:"owner_id"`
		Amount  string `json:"amount"`
	} `json:"lines"`
}

// Commit handles PUT /v1/budget
// Upserts the submitted lines keyed on (month, owner type, owner id).
func (h *BudgetHandler) Commit(c fiber.Ctx) error {
	var req CommitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lines cannot be empty"})
	}

	lines := make([]models.BudgetLine, 0, len(req.Lines))
	for _, in := range req.Lines {
		month, err := models.ParseReferenceMonth(in.Month)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		ownerID, err := uuid.Parse(in.OwnerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid owner_id"})
		}
		amount, err := decimal.NewFromString(in.Amount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid amount"})
		}
		lines = append(lines, models.BudgetLine{
			Month:     month,
			OwnerType: models.OwnerTypeCostCenter,
			OwnerID:   ownerID,
			Amount:    amount,
		})
	}

	if err := h.store.UpsertBudgetLines(c.Context(), lines); err != nil {
		log.Printf("budget commit failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save budget lines",
		})
	}

	return c.JSON(fiber.Map{
		"saved": len(lines),
	})
}

// Distribute handles POST /v1/budget/distribute
// Body: {"annual_total": "12000.00"}
// Returns the cent-exact twelve-month split without persisting anything.
func (h *BudgetHandler) Distribute(c fiber.Ctx) error {
	var req struct {
		AnnualTotal string `json:"annual_total"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	total, err := decimal.NewFromString(req.AnnualTotal)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid annual_total"})
	}

	months := services.DistributeAnnual(total)
	return c.JSON(fiber.Map{
		"annual_total": total,
		"months":       months,
	})
}

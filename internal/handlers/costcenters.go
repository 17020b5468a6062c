package handlers

import (
	"log"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/repository"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// CostCentersHandler manages cost centers and their DRE category links.
type CostCentersHandler struct {
	store *repository.Store
}

// NewCostCentersHandler creates a new cost centers handler.
func NewCostCentersHandler(store *repository.Store) *CostCentersHandler {
	return &CostCentersHandler{store: store}
}

// List handles GET /v1/cost-centers
func (h *CostCentersHandler) List(c fiber.Ctx) error {
	costCenters, err := h.store.ListCostCenters(c.Context())
	if err != nil {
		log.Printf("cost center list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch cost centers",
		})
	}
	return c.JSON(fiber.Map{
		"cost_centers": costCenters,
		"total":        len(costCenters),
	})
}

// CostCenterRequest is the create/update payload.
type CostCenterRequest struct {
	Name          string `json:"name"`
	IsActive      *bool  `json:"is_active"`
	DRECategoryID string `json:"dre_category_id"`
}

// Create handles POST /v1/cost-centers
func (h *CostCentersHandler) Create(c fiber.Ctx) error {
	// 1. Parse body
	var req CostCenterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// 2. Validate the category link against the current tree
	cc, errMsg := h.costCenterFromRequest(c, req)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}

	// 3. Insert
	created, err := h.store.CreateCostCenter(c.Context(), cc)
	if err != nil {
		log.Printf("cost center create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create cost center",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cost_center": created})
}

// Update handles PUT /v1/cost-centers/:id
// The DRE link may be re-pointed but never cleared for an active record.
func (h *CostCentersHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cost center ID"})
	}

	var req CostCenterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	cc, errMsg := h.costCenterFromRequest(c, req)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}
	cc.ID = id

	if err := h.store.UpdateCostCenter(c.Context(), cc); err != nil {
		log.Printf("cost center update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update cost center",
		})
	}
	return c.JSON(fiber.Map{"cost_center": cc})
}

// costCenterFromRequest validates the payload. The linked category must
// exist, be active, and be a leaf.
func (h *CostCentersHandler) costCenterFromRequest(c fiber.Ctx, req CostCenterRequest) (models.CostCenter, string) {
	if req.Name == "" {
		return models.CostCenter{}, "name is required"
	}
	categoryID, err := uuid.Parse(req.DRECategoryID)
	if err != nil {
		return models.CostCenter{}, "dre_category_id is required and must be a valid UUID"
	}

	categories, err := h.store.ListCategories(c.Context())
	if err != nil {
		log.Printf("cost center validation fetch failed: %v", err)
		return models.CostCenter{}, "failed to validate category link"
	}
	tree := services.BuildCategoryTree(categories)
	category, ok := tree.Get(categoryID)
	if !ok {
		return models.CostCenter{}, "dre_category_id does not reference an existing category"
	}
	if category.IsGroup {
		return models.CostCenter{}, "dre_category_id must reference a leaf category, not a group"
	}
	if !category.IsActive {
		return models.CostCenter{}, "dre_category_id must reference an active category"
	}

	cc := models.CostCenter{
		Name:          req.Name,
		IsActive:      true,
		DRECategoryID: categoryID,
	}
	if req.IsActive != nil {
		cc.IsActive = *req.IsActive
	}
	return cc, ""
}

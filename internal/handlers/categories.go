package handlers

import (
	"log"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/repository"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// CategoriesHandler manages the chart of accounts.
type CategoriesHandler struct {
	store *repository.Store
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(store *repository.Store) *CategoriesHandler {
	return &CategoriesHandler{store: store}
}

// List handles GET /v1/categories
// Returns the flat list plus the root-ordered tree view.
func (h *CategoriesHandler) List(c fiber.Ctx) error {
	categories, err := h.store.ListCategories(c.Context())
	if err != nil {
		log.Printf("category list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch categories",
		})
	}

	tree := services.BuildCategoryTree(categories)
	return c.JSON(fiber.Map{
		"categories": categories,
		"roots":      tree.Roots(),
		"total":      len(categories),
	})
}

// CategoryRequest is the create/update payload.
type CategoryRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	IsActive     *bool   `json:"is_active"`
	IncludeInDRE *bool   `json:"include_in_dre"`
	IsGroup      bool    `json:"is_group"`
	ParentID     *string `json:"parent_id"`
	SortOrder    int     `json:"sort_order"`
}

// Create handles POST /v1/categories
func (h *CategoriesHandler) Create(c fiber.Ctx) error {
	// 1. Parse and validate body
	var req CategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	category, errMsg := h.categoryFromRequest(c, req)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}

	// 2. Insert
	created, err := h.store.CreateCategory(c.Context(), category)
	if err != nil {
		log.Printf("category create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create category",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"category": created})
}

// Update handles PUT /v1/categories/:id
func (h *CategoriesHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category ID"})
	}

	var req CategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	category, errMsg := h.categoryFromRequest(c, req)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}
	category.ID = id

	if err := h.store.UpdateCategory(c.Context(), category); err != nil {
		log.Printf("category update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update category",
		})
	}
	return c.JSON(fiber.Map{"category": category})
}

// Deactivate handles DELETE /v1/categories/:id
// Soft-deactivates; the store's constraints own hard deletion rules.
func (h *CategoriesHandler) Deactivate(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category ID"})
	}

	if err := h.store.DeactivateCategory(c.Context(), id); err != nil {
		log.Printf("category deactivate failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to deactivate category",
		})
	}
	return c.JSON(fiber.Map{"message": "category deactivated"})
}

// categoryFromRequest validates the payload and resolves the parent
// reference. Returns a non-empty message on validation failure.
func (h *CategoriesHandler) categoryFromRequest(c fiber.Ctx, req CategoryRequest) (models.Category, string) {
	if req.Name == "" {
		return models.Category{}, "name is required"
	}
	catType := models.CategoryType(req.Type)
	if catType != models.CategoryTypeIncome && catType != models.CategoryTypeExpense {
		return models.Category{}, "type must be INCOME or EXPENSE"
	}

	category := models.Category{
		Name:         req.Name,
		Type:         catType,
		IsActive:     true,
		IncludeInDRE: true,
		IsGroup:      req.IsGroup,
		SortOrder:    req.SortOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.IncludeInDRE != nil {
		category.IncludeInDRE = *req.IncludeInDRE
	}
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return models.Category{}, "invalid parent_id"
		}
		category.ParentID = &parentID
	}
	return category, ""
}

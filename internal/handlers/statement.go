package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatementHandler serves the DRE report and its XLSX export.
type StatementHandler struct {
	reloader *services.Reloader
	archive  *services.ArchiveService // nil when no bucket is configured
	loc      *time.Location
}

// NewStatementHandler creates a new statement handler. archive may be
// nil; exports then skip the S3 copy.
func NewStatementHandler(reloader *services.Reloader, archive *services.ArchiveService, loc *time.Location) *StatementHandler {
	return &StatementHandler{reloader: reloader, archive: archive, loc: loc}
}

// CategoryBreakdown is one row of the per-root category detail.
type CategoryBreakdown struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	IsGroup  bool                `json:"is_group"`
	Signed   decimal.Decimal     `json:"signed"`
	Absolute decimal.Decimal     `json:"absolute"`
	Children []CategoryBreakdown `json:"children,omitempty"`
}

type StatementResponse struct {
	Period    services.PeriodSelection `json:"period"`
	Basis     models.Basis             `json:"basis"`
	Lines     services.StatementLines  `json:"lines"`
	Breakdown []CategoryBreakdown      `json:"breakdown"`
	Excluded  int                      `json:"excluded_records"`
}

// GetStatement handles GET /v1/reports/statement
// Query params: mode, month, year, basis, format (json|xlsx), archive (bool)
func (h *StatementHandler) GetStatement(c fiber.Ctx) error {
	// 1. Parse period and basis
	sel, err := parsePeriodSelection(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	basis, err := parseBasis(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// 2. Reload the period
	bundle, err := h.reloader.Reload(c.Context(), sel, basis, businessToday(h.loc))
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a newer reload superseded this request",
			})
		}
		log.Printf("statement reload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load statement data",
		})
	}

	if bundle.Current.Excluded > 0 {
		log.Printf("statement for %s excluded %d records with unresolvable categories", periodLabel(sel), bundle.Current.Excluded)
	}

	// 3. XLSX export path
	if c.Query("format") == "xlsx" {
		return h.exportStatement(c, bundle, sel)
	}

	// 4. JSON response with per-root breakdown
	breakdown := make([]CategoryBreakdown, 0, len(bundle.Tree.Roots()))
	for _, root := range bundle.Tree.Roots() {
		if !root.IncludeInDRE {
			continue
		}
		breakdown = append(breakdown, buildBreakdown(bundle, root, 0))
	}

	return c.JSON(StatementResponse{
		Period:    sel,
		Basis:     basis,
		Lines:     bundle.Statement,
		Breakdown: breakdown,
		Excluded:  bundle.Current.Excluded,
	})
}

// exportStatement renders the workbook, optionally archives it, and
// streams it back.
func (h *StatementHandler) exportStatement(c fiber.Ctx, bundle *services.Bundle, sel services.PeriodSelection) error {
	label := periodLabel(sel)
	workbook, err := services.ExportStatementXLSX(bundle.Statement, label)
	if err != nil {
		log.Printf("statement export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to export statement",
		})
	}

	if h.archive != nil && fiber.Query(c, "archive", false) {
		orgID := "default"
		if id, ok := c.Locals("user_id").(string); ok && id != "" {
			orgID = id
		}
		key, err := h.archive.StatementKey(orgID, label)
		if err == nil {
			err = h.archive.StoreStatement(c.Context(), key, workbook)
		}
		if err != nil {
			log.Printf("statement archive failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to archive statement",
			})
		}
		url, err := h.archive.PresignDownloadURL(c.Context(), key, 60)
		if err != nil {
			log.Printf("statement presign failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to generate download link",
			})
		}
		return c.JSON(fiber.Map{"key": key, "download_url": url})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="dre-%s.xlsx"`, label))
	return c.Send(workbook)
}

// DeleteArchived handles DELETE /v1/reports/statement/archive
// Query params: key (the archive key returned by the export)
func (h *StatementHandler) DeleteArchived(c fiber.Ctx) error {
	if h.archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "statement archive is not configured",
		})
	}
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key parameter is required"})
	}

	if err := h.archive.Delete(c.Context(), key); err != nil {
		log.Printf("statement archive delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete archived statement",
		})
	}
	return c.JSON(fiber.Map{"message": "archived statement deleted"})
}

func buildBreakdown(bundle *services.Bundle, category models.Category, depth int) CategoryBreakdown {
	node := CategoryBreakdown{
		ID:       category.ID.String(),
		Name:     category.Name,
		IsGroup:  category.IsGroup,
		Signed:   bundle.Current.SignedOf(category.ID),
		Absolute: bundle.Current.AbsoluteOf(category.ID),
	}
	// Depth guard mirrors the tree walker's bound; a malformed tree
	// must not recurse without limit.
	if depth >= 64 {
		return node
	}
	for _, child := range bundle.Tree.ChildrenOf(category.ID) {
		node.Children = append(node.Children, buildBreakdown(bundle, child, depth+1))
	}
	return node
}

func periodLabel(sel services.PeriodSelection) string {
	if sel.Mode == services.PeriodModeYear {
		return fmt.Sprintf("%d", sel.Year)
	}
	return sel.Month.String()
}

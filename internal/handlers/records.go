package handlers

import (
	"log"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/repository"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordsHandler manages the transaction ledger.
type RecordsHandler struct {
	store *repository.Store
	loc   *time.Location
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(store *repository.Store, loc *time.Location) *RecordsHandler {
	return &RecordsHandler{store: store, loc: loc}
}

// List handles GET /v1/records
// Query params: from, to (YYYY-MM-DD), basis (accrual|cash), status (all|pending|paid|late)
func (h *RecordsHandler) List(c fiber.Ctx) error {
	// 1. Parse the date window
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from and to parameters are required",
		})
	}
	from, err := models.ParseDate(fromStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	to, err := models.ParseDate(toStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if to.Before(from) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must not precede from"})
	}

	basis, err := parseBasis(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	statusFilter := c.Query("status", "all")
	validStatus := map[string]bool{"all": true, "pending": true, "paid": true, "late": true}
	if !validStatus[statusFilter] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid status parameter. Must be one of: all, pending, paid, late",
		})
	}

	// 2. Fetch via the basis-derived query window
	window := services.BasisQueryWindow(basis, models.DateRange{Start: from, End: to})
	records, err := h.store.ListFinancialRecords(c.Context(), window)
	if err != nil {
		log.Printf("record list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch records",
		})
	}

	// 3. Apply the read-time status classification
	today := businessToday(h.loc)
	type recordView struct {
		models.FinancialRecord
		EffectiveStatus models.RecordStatus `json:"effective_status"`
	}
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		effective := rec.EffectiveStatus(today)
		if statusFilter != "all" && string(effective) != normalizeStatusParam(statusFilter) {
			continue
		}
		views = append(views, recordView{FinancialRecord: rec, EffectiveStatus: effective})
	}

	return c.JSON(fiber.Map{
		"records": views,
		"total":   len(views),
		"basis":   basis,
	})
}

func normalizeStatusParam(s string) string {
	switch s {
	case "pending":
		return string(models.StatusPending)
	case "paid":
		return string(models.StatusPaid)
	case "late":
		return string(models.StatusLate)
	default:
		return s
	}
}

// Get handles GET /v1/records/:id
func (h *RecordsHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record ID"})
	}

	rec, err := h.store.GetFinancialRecord(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}

	return c.JSON(fiber.Map{
		"record":           rec,
		"effective_status": rec.EffectiveStatus(businessToday(h.loc)),
	})
}

// CreateRecordRequest is the ledger-entry payload. The category is
// never chosen directly; it is inherited from the cost center at save
// time.
type CreateRecordRequest struct {
	Description      string  `json:"description"`
	Amount           string  `json:"amount"`
	Type             string  `json:"type"`
	Status           string  `json:"status"`
	DueDate          string  `json:"due_date"`
	CompetenceDate   string  `json:"competence_date"`
	PaymentDate      *string `json:"payment_date"`
	CostCenterID     string  `json:"cost_center_id"`
	CounterpartyID   *string `json:"counterparty_id"`
	CounterpartyName string  `json:"counterparty_name"`
	DocumentNumber   string  `json:"document_number"`
	PaymentMethod    string  `json:"payment_method"`
	BankAccountID    *string `json:"bank_account_id"`
}

// Create handles POST /v1/records
func (h *RecordsHandler) Create(c fiber.Ctx) error {
	// 1. Parse body
	var req CreateRecordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// 2. Validate fields
	rec, errMsg := h.recordFromRequest(c, req)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}

	// 3. Insert
	created, err := h.store.CreateFinancialRecord(c.Context(), rec)
	if err != nil {
		log.Printf("record create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create record",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"record": created})
}

// Pay handles PUT /v1/records/:id/pay
// Body: {"payment_date": "YYYY-MM-DD", "bank_account_id": "..."}
func (h *RecordsHandler) Pay(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record ID"})
	}

	var req struct {
		PaymentDate   string `json:"payment_date"`
		BankAccountID string `json:"bank_account_id"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Settling requires both the date and the account.
	paymentDate, err := models.ParseDate(req.PaymentDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment_date is required"})
	}
	bankAccountID, err := uuid.Parse(req.BankAccountID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bank_account_id is required"})
	}

	if err := h.store.MarkRecordPaid(c.Context(), id, paymentDate, bankAccountID); err != nil {
		log.Printf("record pay failed: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "record not found or not pending",
		})
	}
	return c.JSON(fiber.Map{"message": "record marked as paid"})
}

// Delete handles DELETE /v1/records/:id
func (h *RecordsHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record ID"})
	}

	if err := h.store.DeleteFinancialRecord(c.Context(), id); err != nil {
		log.Printf("record delete failed: %v", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	return c.JSON(fiber.Map{"message": "record deleted"})
}

// recordFromRequest validates and assembles a record, denormalizing the
// category id from the cost center's current link.
func (h *RecordsHandler) recordFromRequest(c fiber.Ctx, req CreateRecordRequest) (models.FinancialRecord, string) {
	if req.Description == "" {
		return models.FinancialRecord{}, "description is required"
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return models.FinancialRecord{}, "amount must be a positive decimal"
	}
	recType := models.RecordType(req.Type)
	if recType != models.RecordTypeIncome && recType != models.RecordTypeExpense {
		return models.FinancialRecord{}, "type must be INCOME or EXPENSE"
	}
	status := models.RecordStatus(req.Status)
	if status != models.StatusPending && status != models.StatusPaid {
		return models.FinancialRecord{}, "status must be PENDING or PAID"
	}
	dueDate, err := models.ParseDate(req.DueDate)
	if err != nil {
		return models.FinancialRecord{}, "due_date is required (YYYY-MM-DD)"
	}
	competenceDate, err := models.ParseDate(req.CompetenceDate)
	if err != nil {
		return models.FinancialRecord{}, "competence_date is required (YYYY-MM-DD)"
	}
	costCenterID, err := uuid.Parse(req.CostCenterID)
	if err != nil {
		return models.FinancialRecord{}, "cost_center_id is required"
	}

	// Resolve the cost center's current category link; the record
	// stores it so the ledger keeps historical truth even if the link
	// changes later.
	costCenter, err := h.store.GetCostCenter(c.Context(), costCenterID)
	if err != nil {
		return models.FinancialRecord{}, "cost_center_id does not reference an existing cost center"
	}
	if !costCenter.IsActive {
		return models.FinancialRecord{}, "cost center is inactive"
	}

	rec := models.FinancialRecord{
		Description:      req.Description,
		Amount:           amount,
		Type:             recType,
		Status:           status,
		DueDate:          dueDate,
		CompetenceDate:   competenceDate,
		CategoryID:       costCenter.DRECategoryID,
		CostCenterID:     costCenterID,
		CounterpartyName: req.CounterpartyName,
		DocumentNumber:   req.DocumentNumber,
		PaymentMethod:    req.PaymentMethod,
	}

	if req.CounterpartyID != nil && *req.CounterpartyID != "" {
		cpID, err := uuid.Parse(*req.CounterpartyID)
		if err != nil {
			return models.FinancialRecord{}, "invalid counterparty_id"
		}
		rec.CounterpartyID = &cpID
	}
	if req.BankAccountID != nil && *req.BankAccountID != "" {
		baID, err := uuid.Parse(*req.BankAccountID)
		if err != nil {
			return models.FinancialRecord{}, "invalid bank_account_id"
		}
		rec.BankAccountID = &baID
	}

	// A paid record must carry its settlement details.
	if status == models.StatusPaid {
		if req.PaymentDate == nil || *req.PaymentDate == "" {
			return models.FinancialRecord{}, "payment_date is required for PAID records"
		}
		paymentDate, err := models.ParseDate(*req.PaymentDate)
		if err != nil {
			return models.FinancialRecord{}, "invalid payment_date"
		}
		if rec.BankAccountID == nil {
			return models.FinancialRecord{}, "bank_account_id is required for PAID records"
		}
		rec.PaymentDate = &paymentDate
	} else if req.PaymentDate != nil && *req.PaymentDate != "" {
		return models.FinancialRecord{}, "payment_date is only allowed for PAID records"
	}

	return rec, ""
}

package repository

import (
	"context"
	"fmt"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const recordColumns = `
	id, description, amount::text, type, status,
	due_date, competence_date, payment_date,
	category_id, cost_center_id,
	counterparty_id, counterparty_name, document_number, payment_method, bank_account_id
`

// ListFinancialRecords returns records constrained by the basis query
// window: competence-date range for accrual, payment-date range plus
// PAID status for cash.
func (s *Store) ListFinancialRecords(ctx context.Context, window services.QueryWindow) ([]models.FinancialRecord, error) {
	column := "competence_date"
	if window.Column == services.ColumnPaymentDate {
		column = "payment_date"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM financial_records
		WHERE %s BETWEEN $1 AND $2
	`, recordColumns, column)
	args := []interface{}{pgDate(window.Range.Start), pgDate(window.Range.End)}

	if window.RequirePaid {
		query += ` AND status = $3`
		args = append(args, string(models.StatusPaid))
	}
	query += fmt.Sprintf(` ORDER BY %s, created_at`, column)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial records: %w", err)
	}
	defer rows.Close()

	var records []models.FinancialRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read financial records: %w", err)
	}
	return records, nil
}

// GetFinancialRecord returns one record by id.
func (s *Store) GetFinancialRecord(ctx context.Context, id uuid.UUID) (models.FinancialRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_records WHERE id = $1`, recordColumns)
	row := s.pool.QueryRow(ctx, query, pgUUID(id))
	rec, err := scanRecord(row.Scan)
	if err != nil {
		return models.FinancialRecord{}, fmt.Errorf("failed to get financial record %s: %w", id, err)
	}
	return rec, nil
}

// CreateFinancialRecord inserts a new record. The caller has already
// denormalized the category id from the cost center's current link.
func (s *Store) CreateFinancialRecord(ctx context.Context, rec models.FinancialRecord) (models.FinancialRecord, error) {
	rec.ID = uuid.New()

	var paymentDate pgtype.Date
	if rec.PaymentDate != nil {
		paymentDate = pgDate(*rec.PaymentDate)
	}
	var counterpartyID, bankAccountID pgtype.UUID
	if rec.CounterpartyID != nil {
		counterpartyID = pgUUID(*rec.CounterpartyID)
	}
	if rec.BankAccountID != nil {
		bankAccountID = pgUUID(*rec.BankAccountID)
	}

	query := `
		INSERT INTO financial_records (
			id, description, amount, type, status,
			due_date, competence_date, payment_date,
			category_id, cost_center_id,
			counterparty_id, counterparty_name, document_number, payment_method, bank_account_id,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
	`
	_, err := s.pool.Exec(ctx, query,
		pgUUID(rec.ID), rec.Description, rec.Amount.String(), string(rec.Type), string(rec.Status),
		pgDate(rec.DueDate), pgDate(rec.CompetenceDate), paymentDate,
		pgUUID(rec.CategoryID), pgUUID(rec.CostCenterID),
		counterpartyID, rec.CounterpartyName, rec.DocumentNumber, rec.PaymentMethod, bankAccountID)
	if err != nil {
		return models.FinancialRecord{}, fmt.Errorf("failed to insert financial record: %w", err)
	}
	return rec, nil
}

// MarkRecordPaid transitions a pending record to PAID with its payment
// date and settlement account. The WHERE clause enforces the transition
// is only legal from PENDING.
func (s *Store) MarkRecordPaid(ctx context.Context, id uuid.UUID, paymentDate models.Date, bankAccountID uuid.UUID) error {
	query := `
		UPDATE financial_records
		SET status = $2, payment_date = $3, bank_account_id = $4
		WHERE id = $1 AND status = $5
	`
	tag, err := s.pool.Exec(ctx, query,
		pgUUID(id), string(models.StatusPaid), pgDate(paymentDate), pgUUID(bankAccountID), string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark record paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not found or not pending", id)
	}
	return nil
}

// DeleteFinancialRecord removes a record.
func (s *Store) DeleteFinancialRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM financial_records WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("failed to delete financial record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// scanRecord maps one row onto a FinancialRecord. Taking the scan
// function lets it serve both Query and QueryRow paths.
func scanRecord(scan func(...interface{}) error) (models.FinancialRecord, error) {
	var (
		rec            models.FinancialRecord
		id             pgtype.UUID
		amountText     string
		recType        string
		status         string
		dueDate        pgtype.Date
		competenceDate pgtype.Date
		paymentDate    pgtype.Date
		categoryID     pgtype.UUID
		costCenterID   pgtype.UUID
		counterpartyID pgtype.UUID
		counterparty   pgtype.Text
		documentNumber pgtype.Text
		paymentMethod  pgtype.Text
		bankAccountID  pgtype.UUID
	)

	err := scan(&id, &rec.Description, &amountText, &recType, &status,
		&dueDate, &competenceDate, &paymentDate,
		&categoryID, &costCenterID,
		&counterpartyID, &counterparty, &documentNumber, &paymentMethod, &bankAccountID)
	if err != nil {
		return models.FinancialRecord{}, fmt.Errorf("failed to scan financial record: %w", err)
	}

	amount, err := parseAmount(amountText)
	if err != nil {
		return models.FinancialRecord{}, err
	}

	rec.ID = fromPgUUID(id)
	rec.Amount = amount
	rec.Type = models.RecordType(recType)
	rec.Status = models.RecordStatus(status)
	rec.DueDate = fromPgDate(dueDate)
	rec.CompetenceDate = fromPgDate(competenceDate)
	rec.PaymentDate = fromPgDatePtr(paymentDate)
	rec.CategoryID = fromPgUUID(categoryID)
	rec.CostCenterID = fromPgUUID(costCenterID)
	rec.CounterpartyID = fromPgUUIDPtr(counterpartyID)
	rec.CounterpartyName = counterparty.String
	rec.DocumentNumber = documentNumber.String
	rec.PaymentMethod = paymentMethod.String
	rec.BankAccountID = fromPgUUIDPtr(bankAccountID)
	return rec, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ListBudgetLines returns every budget line whose month falls in the
// given year. Months are stored as the first day of the month.
func (s *Store) ListBudgetLines(ctx context.Context, year int) ([]models.BudgetLine, error) {
	query := `
		SELECT month, owner_type, owner_id, amount::text
		FROM budget_lines
		WHERE month BETWEEN $1 AND $2
		ORDER BY month, owner_id
	`
	start := pgDate(models.NewDate(year, time.January, 1))
	end := pgDate(models.NewDate(year, time.December, 1))

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget lines: %w", err)
	}
	defer rows.Close()

	var lines []models.BudgetLine
	for rows.Next() {
		var (
			line       models.BudgetLine
			month      pgtype.Date
			ownerType  string
			ownerID    pgtype.UUID
			amountText string
		)
		if err := rows.Scan(&month, &ownerType, &ownerID, &amountText); err != nil {
			return nil, fmt.Errorf("failed to scan budget line: %w", err)
		}
		amount, err := parseAmount(amountText)
		if err != nil {
			return nil, err
		}
		d := fromPgDate(month)
		line.Month = models.ReferenceMonth{Year: d.Year, Month: d.Month}
		line.OwnerType = models.OwnerType(ownerType)
		line.OwnerID = fromPgUUID(ownerID)
		line.Amount = amount
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read budget lines: %w", err)
	}
	return lines, nil
}

// UpsertBudgetLines writes a batch of budget lines inside one
// transaction, keyed on (month, owner_type, owner_id). Committing a
// staged draft goes through here.
func (s *Store) UpsertBudgetLines(ctx context.Context, lines []models.BudgetLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin budget upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO budget_lines (month, owner_type, owner_id, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (month, owner_type, owner_id)
		DO UPDATE SET amount = EXCLUDED.amount
	`
	for _, line := range lines {
		month := pgDate(models.NewDate(line.Month.Year, line.Month.Month, 1))
		_, err := tx.Exec(ctx, query, month, string(line.OwnerType), pgUUID(line.OwnerID), line.Amount.String())
		if err != nil {
			return fmt.Errorf("failed to upsert budget line for %s/%s: %w", line.Month, line.OwnerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit budget upsert: %w", err)
	}
	return nil
}

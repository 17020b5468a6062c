package repository

import (
	"fmt"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store is the pgx-backed record store. It owns all SQL; the reporting
// core only ever sees in-memory collections.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ensure Store satisfies the reload coordinator's contract.
var _ services.RecordStore = (*Store)(nil)

// pgUUID converts a uuid.UUID to its pgtype wrapper.
func pgUUID(id uuid.UUID) pgtype.UUID {
	var out pgtype.UUID
	out.Bytes = id
	out.Valid = true
	return out
}

// fromPgUUID converts a pgtype.UUID back to uuid.UUID.
func fromPgUUID(id pgtype.UUID) uuid.UUID {
	var out uuid.UUID
	copy(out[:], id.Bytes[:])
	return out
}

// fromPgUUIDPtr converts a nullable pgtype.UUID to *uuid.UUID.
func fromPgUUIDPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	out := fromPgUUID(id)
	return &out
}

// pgDate converts a calendar date to its pgtype wrapper.
func pgDate(d models.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(time.UTC), Valid: true}
}

// fromPgDate converts a pgtype.Date back to a calendar date.
func fromPgDate(d pgtype.Date) models.Date {
	y, m, day := d.Time.Date()
	return models.Date{Year: y, Month: m, Day: day}
}

// fromPgDatePtr converts a nullable pgtype.Date to *models.Date.
func fromPgDatePtr(d pgtype.Date) *models.Date {
	if !d.Valid {
		return nil
	}
	out := fromPgDate(d)
	return &out
}

// parseAmount parses a numeric column selected as text.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ListCostCenters returns every cost center.
func (s *Store) ListCostCenters(ctx context.Context) ([]models.CostCenter, error) {
	query := `
		SELECT id, name, is_active, dre_category_id
		FROM cost_centers
		ORDER BY LOWER(name)
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost centers: %w", err)
	}
	defer rows.Close()

	var costCenters []models.CostCenter
	for rows.Next() {
		var (
			cc         models.CostCenter
			id         pgtype.UUID
			categoryID pgtype.UUID
		)
		if err := rows.Scan(&id, &cc.Name, &cc.IsActive, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan cost center: %w", err)
		}
		cc.ID = fromPgUUID(id)
		cc.DRECategoryID = fromPgUUID(categoryID)
		costCenters = append(costCenters, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cost centers: %w", err)
	}
	return costCenters, nil
}

// GetCostCenter returns one cost center by id.
func (s *Store) GetCostCenter(ctx context.Context, id uuid.UUID) (models.CostCenter, error) {
	var (
		cc         models.CostCenter
		rowID      pgtype.UUID
		categoryID pgtype.UUID
	)
	query := `SELECT id, name, is_active, dre_category_id FROM cost_centers WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, pgUUID(id)).Scan(&rowID, &cc.Name, &cc.IsActive, &categoryID)
	if err != nil {
		return models.CostCenter{}, fmt.Errorf("failed to get cost center %s: %w", id, err)
	}
	cc.ID = fromPgUUID(rowID)
	cc.DRECategoryID = fromPgUUID(categoryID)
	return cc, nil
}

// CreateCostCenter inserts a new cost center and returns it with its
// generated id.
func (s *Store) CreateCostCenter(ctx context.Context, cc models.CostCenter) (models.CostCenter, error) {
	cc.ID = uuid.New()

	query := `
		INSERT INTO cost_centers (id, name, is_active, dre_category_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, query, pgUUID(cc.ID), cc.Name, cc.IsActive, pgUUID(cc.DRECategoryID))
	if err != nil {
		return models.CostCenter{}, fmt.Errorf("failed to insert cost center: %w", err)
	}
	return cc, nil
}

// UpdateCostCenter updates a cost center's editable fields. The DRE
// category link may change but never empties; validation happens at the
// handler with the current category tree.
func (s *Store) UpdateCostCenter(ctx context.Context, cc models.CostCenter) error {
	query := `
		UPDATE cost_centers
		SET name = $2, is_active = $3, dre_category_id = $4
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, pgUUID(cc.ID), cc.Name, cc.IsActive, pgUUID(cc.DRECategoryID))
	if err != nil {
		return fmt.Errorf("failed to update cost center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cost center %s not found", cc.ID)
	}
	return nil
}

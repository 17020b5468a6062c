package repository

import (
	"context"
	"fmt"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ListCategories returns every category, active or not, in sort order
// so list endpoints stay stable without a client-side sort.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT id, name, type, is_active, include_in_dre, is_group, parent_id, sort_order
		FROM categories
		ORDER BY sort_order, LOWER(name)
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var (
			c        models.Category
			id       pgtype.UUID
			parentID pgtype.UUID
			catType  string
		)
		if err := rows.Scan(&id, &c.Name, &catType, &c.IsActive, &c.IncludeInDRE, &c.IsGroup, &parentID, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ID = fromPgUUID(id)
		c.ParentID = fromPgUUIDPtr(parentID)
		c.Type = models.CategoryType(catType)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a new category and returns it with its
// generated id.
func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	c.ID = uuid.New()

	var parentID pgtype.UUID
	if c.ParentID != nil {
		parentID = pgUUID(*c.ParentID)
	}

	query := `
		INSERT INTO categories (id, name, type, is_active, include_in_dre, is_group, parent_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		pgUUID(c.ID), c.Name, string(c.Type), c.IsActive, c.IncludeInDRE, c.IsGroup, parentID, c.SortOrder)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

// UpdateCategory updates a category's editable fields.
func (s *Store) UpdateCategory(ctx context.Context, c models.Category) error {
	var parentID pgtype.UUID
	if c.ParentID != nil {
		parentID = pgUUID(*c.ParentID)
	}

	query := `
		UPDATE categories
		SET name = $2, type = $3, is_active = $4, include_in_dre = $5, is_group = $6, parent_id = $7, sort_order = $8
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		pgUUID(c.ID), c.Name, string(c.Type), c.IsActive, c.IncludeInDRE, c.IsGroup, parentID, c.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s not found", c.ID)
	}
	return nil
}

// DeactivateCategory soft-deactivates a category. Hard deletes are only
// allowed by the schema when nothing references the row.
func (s *Store) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET is_active = false WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s not found", id)
	}
	return nil
}

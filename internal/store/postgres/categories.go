package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, name, code, description, icon_url, is_active, status_id`

func scanCategory(row pgx.Row) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IconURL, &c.IsActive, &c.StatusID)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context, opts store.ListOptions) ([]models.Category, error) {
	var f filters
	activeFilter(&f, "is_active", opts)
	query, args := f.page("SELECT "+categoryColumns+" FROM categories", "id ASC", opts)
	return listHydrated(ctx, s, query, args, scanCategory, hydrateCategories)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	return getHydrated(ctx, s, "categories", categoryColumns, id, scanCategory, hydrateCategories)
}

func categoryColumnsFor(fields store.CategoryFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "icon_url", fields.IconURL)
	setOpt(&c, "is_active", fields.IsActive)
	setOpt(&c, "status_id", fields.StatusID)
	return c
}

func (s *Store) CreateCategory(ctx context.Context, fields store.CategoryFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeCategory); err != nil {
			return err
		}
		var err error
		id, err = insertRow(ctx, tx, "categories", categoryColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, fields store.CategoryFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeCategory); err != nil {
			return err
		}
		return updateRow(ctx, tx, "categories", id, categoryColumnsFor(fields))
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "categories", id)
}

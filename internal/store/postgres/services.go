package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const serviceColumns = `id, name, code, prefix, description, icon_url, is_active, status_id, category_id`

func scanService(row pgx.Row) (models.Service, error) {
	var s models.Service
	err := row.Scan(&s.ID, &s.Name, &s.Code, &s.Prefix, &s.Description, &s.IconURL, &s.IsActive, &s.StatusID, &s.CategoryID)
	return s, err
}

func (s *Store) ListServices(ctx context.Context, filter store.ServiceFilter) ([]models.Service, error) {
	var f filters
	activeFilter(&f, "is_active", filter.ListOptions)
	if filter.CategoryID != 0 {
		f.add("category_id = $%d", filter.CategoryID)
	}
	query, args := f.page("SELECT "+serviceColumns+" FROM services", "id ASC", filter.ListOptions)
	return listHydrated(ctx, s, query, args, scanService, hydrateServices)
}

func (s *Store) GetService(ctx context.Context, id int64) (models.Service, error) {
	return getHydrated(ctx, s, "services", serviceColumns, id, scanService, hydrateServices)
}

func serviceColumnsFor(fields store.ServiceFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "prefix", fields.Prefix)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "icon_url", fields.IconURL)
	setOpt(&c, "is_active", fields.IsActive)
	setOpt(&c, "status_id", fields.StatusID)
	setOpt(&c, "category_id", fields.CategoryID)
	return c
}

func (s *Store) CreateService(ctx context.Context, fields store.ServiceFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeService); err != nil {
			return err
		}
		var err error
		id, err = insertRow(ctx, tx, "services", serviceColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdateService(ctx context.Context, id int64, fields store.ServiceFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeService); err != nil {
			return err
		}
		return updateRow(ctx, tx, "services", id, serviceColumnsFor(fields))
	})
}

func (s *Store) DeleteService(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "services", id)
}

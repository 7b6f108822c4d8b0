package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const locationColumns = `id, name, code, address, description, is_active`

func scanLocation(row pgx.Row) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.Code, &l.Address, &l.Description, &l.IsActive)
	return l, err
}

func (s *Store) ListLocations(ctx context.Context, opts store.ListOptions) ([]models.Location, error) {
	var f filters
	activeFilter(&f, "is_active", opts)
	query, args := f.page("SELECT "+locationColumns+" FROM locations", "id ASC", opts)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanLocation)
}

func (s *Store) GetLocation(ctx context.Context, id int64) (models.Location, error) {
	return fetchOne(ctx, s.pool, "locations", locationColumns, id, scanLocation)
}

func locationColumnsFor(fields store.LocationFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "address", fields.Address)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "is_active", fields.IsActive)
	return c
}

func (s *Store) CreateLocation(ctx context.Context, fields store.LocationFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		id, err = insertRow(ctx, tx, "locations", locationColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdateLocation(ctx context.Context, id int64, fields store.LocationFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return updateRow(ctx, tx, "locations", id, locationColumnsFor(fields))
	})
}

func (s *Store) DeleteLocation(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "locations", id)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const priorityColumns = `id, name, code, weight, description, is_active`

func scanPriority(row pgx.Row) (models.Priority, error) {
	var p models.Priority
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Weight, &p.Description, &p.IsActive)
	return p, err
}

func (s *Store) ListPriorities(ctx context.Context, opts store.ListOptions) ([]models.Priority, error) {
	var f filters
	activeFilter(&f, "is_active", opts)
	query, args := f.page("SELECT "+priorityColumns+" FROM priorities", "weight DESC, id ASC", opts)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPriority)
}

func (s *Store) GetPriority(ctx context.Context, id int64) (models.Priority, error) {
	return fetchOne(ctx, s.pool, "priorities", priorityColumns, id, scanPriority)
}

func priorityByCode(ctx context.Context, q querier, code string) (models.Priority, error) {
	p, err := scanPriority(q.QueryRow(ctx, "SELECT "+priorityColumns+" FROM priorities WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Priority{}, fmt.Errorf("%w: priority %s", store.ErrNotFound, code)
		}
		return models.Priority{}, err
	}
	return p, nil
}

func priorityColumnsFor(fields store.PriorityFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "weight", fields.Weight)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "is_active", fields.IsActive)
	return c
}

func (s *Store) CreatePriority(ctx context.Context, fields store.PriorityFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		id, err = insertRow(ctx, tx, "priorities", priorityColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdatePriority(ctx context.Context, id int64, fields store.PriorityFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return updateRow(ctx, tx, "priorities", id, priorityColumnsFor(fields))
	})
}

func (s *Store) DeletePriority(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "priorities", id)
}

func (s *Store) SeedPriorities(ctx context.Context, priorities []models.Priority) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		for _, p := range priorities {
			tag, err := tx.Exec(ctx, `
				INSERT INTO priorities (name, code, weight, description, is_active)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT DO NOTHING
			`, p.Name, p.Code, p.Weight, p.Description, p.IsActive)
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	return inserted, err
}

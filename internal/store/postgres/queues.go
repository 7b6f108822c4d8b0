package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const queueColumns = `id, name, code, description, is_active, status_id, priority_id`

func scanQueue(row pgx.Row) (models.Queue, error) {
	var q models.Queue
	err := row.Scan(&q.ID, &q.Name, &q.Code, &q.Description, &q.IsActive, &q.StatusID, &q.PriorityID)
	return q, err
}

func (s *Store) ListQueues(ctx context.Context, opts store.ListOptions) ([]models.Queue, error) {
	var f filters
	activeFilter(&f, "is_active", opts)
	query, args := f.page("SELECT "+queueColumns+" FROM queues", "id ASC", opts)
	return listHydrated(ctx, s, query, args, scanQueue, hydrateQueues)
}

func (s *Store) GetQueue(ctx context.Context, id int64) (models.Queue, error) {
	return getHydrated(ctx, s, "queues", queueColumns, id, scanQueue, hydrateQueues)
}

func queueColumnsFor(fields store.QueueFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "is_active", fields.IsActive)
	setOpt(&c, "status_id", fields.StatusID)
	setOpt(&c, "priority_id", fields.PriorityID)
	return c
}

func (s *Store) CreateQueue(ctx context.Context, fields store.QueueFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeQueue); err != nil {
			return err
		}
		var err error
		id, err = insertRow(ctx, tx, "queues", queueColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdateQueue(ctx context.Context, id int64, fields store.QueueFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := validateOptionalStatus(ctx, tx, fields.StatusID, models.StatusTypeQueue); err != nil {
			return err
		}
		return updateRow(ctx, tx, "queues", id, queueColumnsFor(fields))
	})
}

func (s *Store) DeleteQueue(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "queues", id)
}

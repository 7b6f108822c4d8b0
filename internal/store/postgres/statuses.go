package postgres

import (
	"context"
	"errors"
	"fmt"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const statusColumns = `id, name, code, description, type, is_active`

func scanStatus(row pgx.Row) (models.Status, error) {
	var st models.Status
	err := row.Scan(&st.ID, &st.Name, &st.Code, &st.Description, &st.Type, &st.IsActive)
	return st, err
}

func (s *Store) ListStatuses(ctx context.Context, filter store.StatusFilter) ([]models.Status, error) {
	var f filters
	activeFilter(&f, "is_active", filter.ListOptions)
	if filter.Type != "" {
		f.add("type = $%d", filter.Type)
	}
	query, args := f.page("SELECT "+statusColumns+" FROM statuses", "id ASC", filter.ListOptions)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanStatus)
}

func (s *Store) GetStatus(ctx context.Context, id int64) (models.Status, error) {
	return getStatus(ctx, s.pool, id)
}

func getStatus(ctx context.Context, q querier, id int64) (models.Status, error) {
	return fetchOne(ctx, q, "statuses", statusColumns, id, scanStatus)
}

func statusByCodeAndType(ctx context.Context, q querier, code string, statusType models.StatusType) (models.Status, error) {
	st, err := scanStatus(q.QueryRow(ctx, `
		SELECT `+statusColumns+`
		FROM statuses
		WHERE code = $1 AND type = $2
	`, code, string(statusType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Status{}, fmt.Errorf("%w: status %s/%s", store.ErrNotFound, statusType, code)
		}
		return models.Status{}, err
	}
	return st, nil
}

// ValidateStatusType fails with ErrNotFound for an unknown id and with
// ErrInvalidStatusType when the status belongs to another entity kind.
func (s *Store) ValidateStatusType(ctx context.Context, statusID int64, expected models.StatusType) error {
	return validateStatusType(ctx, s.pool, statusID, expected)
}

func validateStatusType(ctx context.Context, q querier, statusID int64, expected models.StatusType) error {
	st, err := lockStatus(ctx, q, statusID)
	if err != nil {
		return err
	}
	return store.CheckStatusType(st, expected)
}

// lockStatus reads a status and holds a key-share lock on it until the
// transaction ends, so a concurrent type change waits for the new reference.
func lockStatus(ctx context.Context, q querier, id int64) (models.Status, error) {
	st, err := scanStatus(q.QueryRow(ctx, "SELECT "+statusColumns+" FROM statuses WHERE id = $1 FOR KEY SHARE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Status{}, fmt.Errorf("%w: statuses %d", store.ErrNotFound, id)
		}
		return models.Status{}, err
	}
	return st, nil
}

// validateOptionalStatus runs the type check only when a status id was supplied.
func validateOptionalStatus(ctx context.Context, q querier, statusID *int64, expected models.StatusType) error {
	if statusID == nil {
		return nil
	}
	return validateStatusType(ctx, q, *statusID, expected)
}

func statusColumnsFor(fields store.StatusFields) columns {
	var c columns
	setOpt(&c, "name", fields.Name)
	setOpt(&c, "code", fields.Code)
	setOpt(&c, "description", fields.Description)
	setOpt(&c, "type", fields.Type)
	setOpt(&c, "is_active", fields.IsActive)
	return c
}

func (s *Store) CreateStatus(ctx context.Context, fields store.StatusFields) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		id, err = insertRow(ctx, tx, "statuses", statusColumnsFor(fields))
		return err
	})
	return id, err
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, fields store.StatusFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if fields.Type != nil {
			if err := checkStatusRetype(ctx, tx, id, *fields.Type); err != nil {
				return err
			}
		}
		return updateRow(ctx, tx, "statuses", id, statusColumnsFor(fields))
	})
}

// statusReferences lists every column that must point at a status of the
// owning entity's kind.
const statusReferences = `
	SELECT EXISTS (SELECT 1 FROM categories WHERE status_id = $1)
		OR EXISTS (SELECT 1 FROM services WHERE status_id = $1)
		OR EXISTS (SELECT 1 FROM queues WHERE status_id = $1)
		OR EXISTS (SELECT 1 FROM customers WHERE status_id = $1)
		OR EXISTS (SELECT 1 FROM appointments WHERE status_id = $1)
		OR EXISTS (SELECT 1 FROM service_turns WHERE status_id = $1)`

// checkStatusRetype refuses to change the type of a status that is already
// referenced. The row lock blocks writers that are validating against it.
func checkStatusRetype(ctx context.Context, tx pgx.Tx, id int64, newType string) error {
	var current string
	err := tx.QueryRow(ctx, `SELECT type FROM statuses WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: statuses %d", store.ErrNotFound, id)
		}
		return err
	}
	if current == newType {
		return nil
	}
	var referenced bool
	if err := tx.QueryRow(ctx, statusReferences, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("%w: status %d is %s and referenced", store.ErrInUse, id, current)
	}
	return nil
}

func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "statuses", id)
}

// SeedStatuses inserts the given statuses, skipping any (code, type) already present.
func (s *Store) SeedStatuses(ctx context.Context, statuses []models.Status) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		for _, st := range statuses {
			tag, err := tx.Exec(ctx, `
				INSERT INTO statuses (name, code, description, type, is_active)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT DO NOTHING
			`, st.Name, st.Code, st.Description, st.Type, st.IsActive)
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	return inserted, err
}

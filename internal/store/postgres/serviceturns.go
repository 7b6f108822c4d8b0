package postgres

import (
	"context"
	"errors"
	"fmt"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

const serviceTurnColumns = `id, ticket_number, customer_name, service_id, status_id, priority_id,
	appointment_id, customer_id, service_started, service_ending_expected, service_ended, ` + auditColumns

func scanServiceTurn(row pgx.Row) (models.ServiceTurn, error) {
	var t models.ServiceTurn
	err := row.Scan(&t.ID, &t.TicketNumber, &t.CustomerName, &t.ServiceID, &t.StatusID, &t.PriorityID,
		&t.AppointmentID, &t.CustomerID, &t.ServiceStarted, &t.ServiceEndingExpected, &t.ServiceEnded,
		&t.Created, &t.CreatedBy, &t.LastModified, &t.LastModifiedBy)
	return t, err
}

func (s *Store) ListServiceTurns(ctx context.Context, filter store.TurnFilter) ([]models.ServiceTurn, error) {
	var f filters
	if filter.ServiceID != 0 {
		f.add("service_id = $%d", filter.ServiceID)
	}
	if filter.StatusID != 0 {
		f.add("status_id = $%d", filter.StatusID)
	}
	if filter.CustomerID != 0 {
		f.add("customer_id = $%d", filter.CustomerID)
	}
	query, args := f.page("SELECT "+serviceTurnColumns+" FROM service_turns", "id ASC", filter.ListOptions)
	return listHydrated(ctx, s, query, args, scanServiceTurn, hydrateServiceTurns)
}

func (s *Store) GetServiceTurn(ctx context.Context, id int64) (models.ServiceTurn, error) {
	return getHydrated(ctx, s, "service_turns", serviceTurnColumns, id, scanServiceTurn, hydrateServiceTurns)
}

// serviceTurnColumnsFor never includes ticket_number; that column is owned by
// the ticket generator.
func serviceTurnColumnsFor(fields store.ServiceTurnFields) columns {
	var c columns
	setOpt(&c, "customer_name", fields.CustomerName)
	setOpt(&c, "service_id", fields.ServiceID)
	setOpt(&c, "status_id", fields.StatusID)
	setOpt(&c, "priority_id", fields.PriorityID)
	setOpt(&c, "appointment_id", fields.AppointmentID)
	setOpt(&c, "customer_id", fields.CustomerID)
	setOpt(&c, "service_started", fields.ServiceStarted)
	setOpt(&c, "service_ending_expected", fields.ServiceEndingExpected)
	setOpt(&c, "service_ended", fields.ServiceEnded)
	return c
}

// CreateServiceTurn inserts a turn with a generated ticket number. A missing
// status or priority falls back to the ticket workflow defaults.
func (s *Store) CreateServiceTurn(ctx context.Context, fields store.ServiceTurnFields) (int64, error) {
	if fields.ServiceID == nil {
		return 0, fmt.Errorf("%w: serviceId is required", store.ErrInvalidValue)
	}
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		prefix, err := servicePrefix(ctx, tx, *fields.ServiceID)
		if err != nil {
			return err
		}
		if fields.StatusID == nil {
			pending, err := statusByCodeAndType(ctx, tx, models.TurnStatusPending, models.StatusTypeTurn)
			if err != nil {
				return err
			}
			fields.StatusID = &pending.ID
		} else if err := validateStatusType(ctx, tx, *fields.StatusID, models.StatusTypeTurn); err != nil {
			return err
		}
		if fields.PriorityID == nil {
			normal, err := priorityByCode(ctx, tx, models.DefaultTurnPriority)
			if err != nil {
				return err
			}
			fields.PriorityID = &normal.ID
		}
		c := serviceTurnColumnsFor(fields)
		stamp(&c, fields.Actor, true)
		id, _, err = s.insertTurn(ctx, tx, *fields.ServiceID, prefix, c)
		return err
	})
	return id, err
}

// UpdateServiceTurn rejects status changes that leave a terminal status or
// skip the lifecycle. The service is fixed at issue time because the ticket
// number carries its prefix.
func (s *Store) UpdateServiceTurn(ctx context.Context, id int64, fields store.ServiceTurnFields) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if fields.StatusID != nil || fields.ServiceID != nil {
			current, err := lockTurn(ctx, tx, id)
			if err != nil {
				return err
			}
			if fields.ServiceID != nil && *fields.ServiceID != current.serviceID {
				return fmt.Errorf("%w: service of turn %d cannot change", store.ErrInvalidValue, id)
			}
			if fields.StatusID != nil {
				next, err := lockStatus(ctx, tx, *fields.StatusID)
				if err != nil {
					return err
				}
				if err := store.CheckStatusType(next, models.StatusTypeTurn); err != nil {
					return err
				}
				if !store.ValidTurnTransition(current.statusCode, next.Code) {
					return fmt.Errorf("%w: %s to %s", store.ErrInvalidTransition, current.statusCode, next.Code)
				}
			}
		}
		c := serviceTurnColumnsFor(fields)
		stamp(&c, fields.Actor, false)
		return updateRow(ctx, tx, "service_turns", id, c)
	})
}

type lockedTurn struct {
	serviceID  int64
	statusCode string
}

// lockTurn reads the service and status code of a turn and holds its row lock
// until the transaction ends.
func lockTurn(ctx context.Context, tx pgx.Tx, id int64) (lockedTurn, error) {
	var turn lockedTurn
	err := tx.QueryRow(ctx, `
		SELECT t.service_id, st.code
		FROM service_turns t
		JOIN statuses st ON st.id = t.status_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, id).Scan(&turn.serviceID, &turn.statusCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lockedTurn{}, fmt.Errorf("%w: service_turns %d", store.ErrNotFound, id)
		}
		return lockedTurn{}, err
	}
	return turn, nil
}

func (s *Store) DeleteServiceTurn(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "service_turns", id)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const ticketNumberConstraint = "turn_ticket_number_unique"

// IssueTicket creates a PENDING turn with the next ticket number of the
// service and reports how many other turns are still waiting for it.
func (s *Store) IssueTicket(ctx context.Context, serviceID int64, customerName string) (models.IssuedTurn, error) {
	ctx, span := otel.Tracer("qms/core-api/store").Start(ctx, "IssueTicket")
	defer span.End()
	span.SetAttributes(attribute.Int64("qms.service_id", serviceID))

	var issued models.IssuedTurn
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		prefix, err := servicePrefix(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		pending, err := statusByCodeAndType(ctx, tx, models.TurnStatusPending, models.StatusTypeTurn)
		if err != nil {
			return err
		}
		normal, err := priorityByCode(ctx, tx, models.DefaultTurnPriority)
		if err != nil {
			return err
		}

		var c columns
		c.set("customer_name", customerName)
		c.set("service_id", serviceID)
		c.set("status_id", pending.ID)
		c.set("priority_id", normal.ID)
		stamp(&c, models.SystemCreator, true)

		id, ticket, err := s.insertTurn(ctx, tx, serviceID, prefix, c)
		if err != nil {
			return err
		}
		waiting, err := countWaiting(ctx, tx, serviceID, id)
		if err != nil {
			return err
		}
		issued = models.IssuedTurn{
			ID:            id,
			CustomerName:  customerName,
			TicketNumber:  ticket,
			PeopleInQueue: waiting,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return models.IssuedTurn{}, err
	}
	span.SetAttributes(attribute.String("qms.ticket_number", issued.TicketNumber))
	s.log.Info("ticket issued",
		"service_id", serviceID,
		"ticket_number", issued.TicketNumber,
		"people_in_queue", issued.PeopleInQueue,
	)
	return issued, nil
}

func servicePrefix(ctx context.Context, q querier, serviceID int64) (string, error) {
	var prefix string
	err := q.QueryRow(ctx, "SELECT prefix FROM services WHERE id = $1", serviceID).Scan(&prefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: services %d", store.ErrNotFound, serviceID)
		}
		return "", err
	}
	return prefix, nil
}

// nextTicketNumber reserves the next number of a service. The sequence row is
// seeded from the number of turns the service already has, and its row lock
// serialises concurrent issuers until the surrounding transaction ends.
func nextTicketNumber(ctx context.Context, tx pgx.Tx, serviceID int64) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		UPDATE service_ticket_sequences
		SET last_number = last_number + 1
		WHERE service_id = $1
		RETURNING last_number
	`, serviceID).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO service_ticket_sequences (service_id, last_number)
		VALUES ($1, (SELECT COUNT(*) FROM service_turns WHERE service_id = $1) + 1)
		ON CONFLICT (service_id) DO UPDATE
		SET last_number = service_ticket_sequences.last_number + 1
		RETURNING last_number
	`, serviceID).Scan(&n)
	return n, err
}

// insertTurn inserts base plus a fresh ticket number. A collision with an
// existing ticket number is rolled back to a savepoint and retried with the
// next number.
func (s *Store) insertTurn(ctx context.Context, tx pgx.Tx, serviceID int64, prefix string, base columns) (int64, string, error) {
	for attempt := 1; attempt <= s.ticketAttempts; attempt++ {
		n, err := nextTicketNumber(ctx, tx, serviceID)
		if err != nil {
			return 0, "", err
		}
		ticket := store.FormatTicketNumber(prefix, n)
		c := base.clone()
		c.set("ticket_number", ticket)

		savepoint, err := tx.Begin(ctx)
		if err != nil {
			return 0, "", err
		}
		id, err := insertRow(ctx, savepoint, "service_turns", c)
		if err == nil {
			if err := savepoint.Commit(ctx); err != nil {
				return 0, "", err
			}
			return id, ticket, nil
		}
		_ = savepoint.Rollback(ctx)
		if !isUniqueViolation(err, ticketNumberConstraint) {
			return 0, "", err
		}
		s.log.Warn("ticket number taken, retrying",
			"service_id", serviceID,
			"ticket_number", ticket,
			"attempt", attempt,
		)
	}
	return 0, "", fmt.Errorf("%w: no free ticket number for service %d after %d attempts",
		store.ErrDuplicate, serviceID, s.ticketAttempts)
}

func countWaiting(ctx context.Context, q querier, serviceID, excludeID int64) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM service_turns t
		JOIN statuses st ON st.id = t.status_id
		WHERE t.service_id = $1
		  AND t.id <> $2
		  AND st.type = $3
		  AND st.code = ANY($4)
	`, serviceID, excludeID, string(models.StatusTypeTurn), store.WaitingCodes).Scan(&n)
	return n, err
}

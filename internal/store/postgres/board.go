package postgres

import (
	"context"

	"qms/core-api/internal/models"
	"qms/core-api/internal/store"

	"github.com/jackc/pgx/v5"
)

// TurnStatusTable lists the turns currently called or being served, in board order.
func (s *Store) TurnStatusTable(ctx context.Context) ([]models.TurnStatus, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.ticket_number, sv.id, sv.name, st.name, st.code
		FROM service_turns t
		JOIN statuses st ON st.id = t.status_id
		JOIN services sv ON sv.id = t.service_id
		WHERE st.type = $1
		  AND st.code = ANY($2)
	`, string(models.StatusTypeTurn), store.StatusTableCodes)
	if err != nil {
		return nil, err
	}
	items, err := collectRows(rows, func(row pgx.Row) (models.TurnStatus, error) {
		var ts models.TurnStatus
		err := row.Scan(&ts.TicketNumber, &ts.ServiceID, &ts.ServiceName, &ts.StatusName, &ts.StatusCode)
		return ts, err
	})
	if err != nil {
		return nil, err
	}
	store.SortTurnStatuses(items)
	return items, nil
}

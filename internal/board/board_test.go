package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"qms/core-api/internal/hub"
	"qms/core-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows  []models.TurnStatus
	err   error
	calls int
}

func (f *fakeSource) TurnStatusTable(context.Context) ([]models.TurnStatus, error) {
	f.calls++
	return f.rows, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRows() []models.TurnStatus {
	return []models.TurnStatus{
		{TicketNumber: "PS-2", ServiceName: "Payments", StatusName: "Being attended", StatusCode: models.TurnStatusBeingAttended},
		{TicketNumber: "LN-7", ServiceName: "Loans", StatusName: "To be attended", StatusCode: models.TurnStatusToBeAttended},
	}
}

func decodeUpdate(t *testing.T, payload []byte) Update {
	t.Helper()
	var update Update
	require.NoError(t, json.Unmarshal(payload, &update))
	return update
}

func TestRefreshSendsEachSubscriberItsView(t *testing.T) {
	h := hub.New(discard())
	all := &hub.Client{ID: "all", Send: make(chan []byte, 1)}
	loans := &hub.Client{ID: "loans", Send: make(chan []byte, 1), Subscription: hub.Subscription{Queue: "Loans"}}
	h.Register(all)
	h.Register(loans)
	refresher := NewRefresher(&fakeSource{rows: sampleRows()}, h, discard())

	require.NoError(t, refresher.Refresh(context.Background()))

	full := decodeUpdate(t, <-all.Send)
	assert.Equal(t, "status-table", full.Type)
	assert.Len(t, full.Rows, 2)

	filtered := decodeUpdate(t, <-loans.Send)
	assert.Equal(t, "Loans", filtered.Queue)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "LN-7", filtered.Rows[0].TicketNumber)
}

func TestRefreshReportsSourceError(t *testing.T) {
	h := hub.New(discard())
	h.Register(&hub.Client{ID: "c", Send: make(chan []byte, 1)})
	refresher := NewRefresher(&fakeSource{err: errors.New("db down")}, h, discard())

	assert.Error(t, refresher.Refresh(context.Background()))
}

func TestNotifyCoalesces(t *testing.T) {
	refresher := NewRefresher(&fakeSource{}, hub.New(discard()), discard())

	refresher.Notify()
	refresher.Notify()
	refresher.Notify()

	assert.Len(t, refresher.signal, 1)
}

func TestRunRefreshesOnSignal(t *testing.T) {
	h := hub.New(discard())
	client := &hub.Client{ID: "c", Send: make(chan []byte, 1)}
	h.Register(client)
	refresher := NewRefresher(&fakeSource{rows: sampleRows()}, h, discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Run(ctx)
	refresher.Notify()

	select {
	case payload := <-client.Send:
		assert.Len(t, decodeUpdate(t, payload).Rows, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("board was not refreshed")
	}
}

func TestRunSkipsWithoutClients(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	refresher := NewRefresher(source, hub.New(discard()), discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.Run(ctx)
		close(done)
	}()
	refresher.Notify()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 0, source.calls)
}

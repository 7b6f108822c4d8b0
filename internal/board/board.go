// Package board keeps display screens in sync with the "now serving" table.
package board

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/hub"
	"qms/core-api/internal/logger"
	"qms/core-api/internal/mapper"
	"qms/core-api/internal/models"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	jsoniter "github.com/json-iterator/go"
)

const (
	Prefix         = "/board"
	refreshTimeout = 5 * time.Second
	clientBuffer   = 16
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type TableSource interface {
	TurnStatusTable(ctx context.Context) ([]models.TurnStatus, error)
}

// Update is the message pushed to clients.
type Update struct {
	Type  string                   `json:"type"`
	Queue string                   `json:"queue,omitempty"`
	Rows  []apimodel.TurnStatusRow `json:"rows"`
}

// Refresher rebuilds the status table when told that turns changed.
// Signals that arrive while a rebuild is pending collapse into one.
type Refresher struct {
	source TableSource
	hub    *hub.Hub
	signal chan struct{}
	log    *slog.Logger
}

func NewRefresher(source TableSource, h *hub.Hub, log *slog.Logger) *Refresher {
	if log == nil {
		log = logger.WithComponent("board")
	}
	return &Refresher{
		source: source,
		hub:    h,
		signal: make(chan struct{}, 1),
		log:    log,
	}
}

func (r *Refresher) Notify() {
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Run refreshes the board on every signal until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.signal:
			if r.hub.Len() == 0 {
				continue
			}
			refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
			if err := r.Refresh(refreshCtx); err != nil {
				r.log.Error("board refresh failed", "error", err)
			}
			cancel()
		}
	}
}

// Refresh loads the table once and sends each subscriber its view of it.
func (r *Refresher) Refresh(ctx context.Context) error {
	table, err := r.source.TurnStatusTable(ctx)
	if err != nil {
		return err
	}
	rows := mapper.TurnStatusTable(table)
	for _, sub := range r.hub.Subscriptions() {
		payload, err := json.Marshal(Update{Type: "status-table", Queue: sub.Queue, Rows: filterRows(rows, sub.Queue)})
		if err != nil {
			return err
		}
		r.hub.Broadcast(payload, sub)
	}
	return nil
}

func filterRows(rows []apimodel.TurnStatusRow, queue string) []apimodel.TurnStatusRow {
	if queue == "" {
		return rows
	}
	out := make([]apimodel.TurnStatusRow, 0, len(rows))
	for _, row := range rows {
		if row.QueueName == queue {
			out = append(out, row)
		}
	}
	return out
}

// Handler serves the SockJS endpoint under Prefix. Every new connection or
// subscription change triggers a refresh so the client starts with a full view.
// Sessions outlive the server write timeout, so the deadline is lifted per
// request.
func Handler(h *hub.Hub, refresher *Refresher) http.Handler {
	sessions := sessionHandler(h, refresher)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		sessions.ServeHTTP(w, r)
	})
}

func sessionHandler(h *hub.Hub, refresher *Refresher) http.Handler {
	return sockjs.NewHandler(Prefix, sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, clientBuffer)}
		h.Register(client)
		defer h.Unregister(client)
		refresher.Notify()

		go func() {
			for msg := range client.Send {
				if err := session.Send(string(msg)); err != nil {
					return
				}
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				h.UpdateSubscription(client, hub.Subscription{})
			} else {
				h.UpdateSubscription(client, hub.Subscription{Queue: parsed.Queue})
			}
			refresher.Notify()
		}
	})
}

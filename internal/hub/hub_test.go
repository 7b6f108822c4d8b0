package hub

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBroadcastMatchesSubscription(t *testing.T) {
	h := newTestHub()
	all := &Client{ID: "all", Send: make(chan []byte, 1)}
	payments := &Client{ID: "payments", Send: make(chan []byte, 1), Subscription: Subscription{Queue: "Payments"}}
	h.Register(all)
	h.Register(payments)

	h.Broadcast([]byte("board"), Subscription{})
	h.Broadcast([]byte("payments"), Subscription{Queue: "Payments"})
	h.Broadcast([]byte("loans"), Subscription{Queue: "Loans"})

	require.Len(t, all.Send, 1)
	assert.Equal(t, "board", string(<-all.Send))
	require.Len(t, payments.Send, 1)
	assert.Equal(t, "payments", string(<-payments.Send))
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	h := newTestHub()
	client := &Client{ID: "c", Send: make(chan []byte, 1)}
	h.Register(client)

	h.Broadcast([]byte("first"), Subscription{})
	h.Broadcast([]byte("second"), Subscription{})

	require.Len(t, client.Send, 1)
	assert.Equal(t, "first", string(<-client.Send))
}

func TestSubscriptionsAreDistinct(t *testing.T) {
	h := newTestHub()
	h.Register(&Client{ID: "a", Send: make(chan []byte, 1)})
	h.Register(&Client{ID: "b", Send: make(chan []byte, 1), Subscription: Subscription{Queue: "Payments"}})
	h.Register(&Client{ID: "c", Send: make(chan []byte, 1), Subscription: Subscription{Queue: "Payments"}})

	assert.ElementsMatch(t, []Subscription{{}, {Queue: "Payments"}}, h.Subscriptions())
	assert.Equal(t, 3, h.Len())
}

func TestUnregisterClosesOnce(t *testing.T) {
	h := newTestHub()
	client := &Client{ID: "c", Send: make(chan []byte, 1)}
	h.Register(client)

	h.Unregister(client)
	h.Unregister(client)

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, h.Len())
}

func TestParseSubscribe(t *testing.T) {
	msg, ok := ParseSubscribe([]byte(`{"action":"subscribe","queue":"Payments"}`))
	require.True(t, ok)
	assert.Equal(t, SubscribeMessage{Action: "subscribe", Queue: "Payments"}, msg)

	_, ok = ParseSubscribe([]byte(`{"action":"shout"}`))
	assert.False(t, ok)
	_, ok = ParseSubscribe([]byte(`not json`))
	assert.False(t, ok)
}

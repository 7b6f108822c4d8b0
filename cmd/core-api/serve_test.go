package main

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qms/core-api/internal/board"
	"qms/core-api/internal/httpapi"
	"qms/core-api/internal/hub"
	"qms/core-api/internal/identity"
	"qms/core-api/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWriteTimeout = 100 * time.Millisecond

type tableSource struct{}

func (tableSource) TurnStatusTable(context.Context) ([]models.TurnStatus, error) {
	return []models.TurnStatus{
		{TicketNumber: "PS-4", ServiceName: "Payments", StatusName: "Being attended", StatusCode: models.TurnStatusBeingAttended},
	}, nil
}

// newTestServer serves the production router with the production write
// timeout shortened so long-lived board sessions outlive it quickly.
func newTestServer(t *testing.T) (*httptest.Server, *board.Refresher) {
	t.Helper()
	boardHub := hub.New(nil)
	refresher := board.NewRefresher(tableSource{}, boardHub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go refresher.Run(ctx)

	router := newRouter(
		httpapi.NewHandler(nil, httpapi.Options{}).Routes(),
		board.Handler(boardHub, refresher),
		httpapi.NewAuthenticator(identity.AllowAll{}, httpapi.AuthConfig{AllowedAPIKeys: []string{"secret"}}),
		httpapi.NewRateLimiter(httpapi.RateLimitConfig{IPPerMinute: 1, IPBurst: 1, AppPerMinute: 1, AppBurst: 1}),
	)
	srv := httptest.NewUnstartedServer(router)
	srv.Config.WriteTimeout = testWriteTimeout
	srv.Start()
	t.Cleanup(func() {
		cancel()
		srv.CloseClientConnections()
		srv.Close()
	})
	return srv, refresher
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestBoardWebsocketThroughRouter(t *testing.T) {
	srv, refresher := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + board.Prefix + "/000/ws1/websocket"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	assert.Equal(t, "o", readFrame(t, conn))
	first := readFrame(t, conn)
	assert.True(t, strings.HasPrefix(first, "a["), first)
	assert.Contains(t, first, "PS-4")

	time.Sleep(3 * testWriteTimeout)
	refresher.Notify()
	assert.Contains(t, readFrame(t, conn), "status-table")
}

func TestBoardXHRStreamingThroughRouter(t *testing.T) {
	srv, refresher := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+board.Prefix+"/000/xs1/xhr_streaming", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	readLine := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSuffix(line, "\n")
	}
	assert.Equal(t, strings.Repeat("h", 2048), readLine())
	assert.Equal(t, "o", readLine())
	assert.Contains(t, readLine(), "PS-4")

	time.Sleep(3 * testWriteTimeout)
	refresher.Notify()
	assert.Contains(t, readLine(), "status-table")
}

func TestRouterKeepsBoardOutsideAuthAndRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, err := srv.Client().Get(srv.URL + board.Prefix + "/info")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := srv.Client().Get(srv.URL + "/api/v1/categories/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

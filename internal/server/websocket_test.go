package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-trading-bot/internal/types"
)

func TestWebSocketStreamsStatus(t *testing.T) {
	_, mux := newTestService()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var status types.BotStatus
	require.NoError(t, conn.ReadJSON(&status))
	assert.False(t, status.IsRunning)
	assert.Equal(t, 10000.0, status.Balance.Available)

	// A clean close is read and acted on by the handler; it must not have
	// to wait for the next push to fail.
	deadline := time.Now().Add(time.Second)
	require.NoError(t, conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline))
}

func TestWebSocketUninitialized(t *testing.T) {
	mux := newUninitializedMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

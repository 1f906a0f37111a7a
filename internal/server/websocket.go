package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"crypto-trading-bot/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const statusPushInterval = 5 * time.Second

// handleWS streams the bot status to the client on a fixed interval, the
// push channel the dashboard subscribes to.
func (s *Service) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.state == StateUninitialized {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"state": StateUninitialized,
			"error": "exchange credentials not configured",
		})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()

	logger.Info(r.Context(), "WebSocket client connected", "remote", r.RemoteAddr)

	// Initial snapshot, then periodic pushes until the client goes away.
	if err := conn.WriteJSON(s.bot.GetStatus(r.Context())); err != nil {
		logger.Warn(r.Context(), "WebSocket write failed", "error", err)
		return
	}

	// Clients never send application frames, but the connection must still
	// be read so close frames and pings are processed promptly.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-clientGone:
			logger.Info(r.Context(), "WebSocket client disconnected", "remote", r.RemoteAddr)
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.bot.GetStatus(r.Context())); err != nil {
				logger.Warn(r.Context(), "WebSocket write failed", "error", err)
				return
			}
		}
	}
}

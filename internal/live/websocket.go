// Package live serves the real-time delivery coaching websocket.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/intervu-ai/intervu/internal/coach"
)

// CoachHandler handles WebSocket-based live coaching sessions. Each
// connection gets its own analyzer; nothing here touches interview
// session state.
type CoachHandler struct {
	cfg           coach.StreamConfig
	allowedOrigin string
	isDev         bool
}

// NewCoachHandler creates a new live coaching handler.
func NewCoachHandler(cfg coach.StreamConfig, allowedOrigin string, isDev bool) *CoachHandler {
	return &CoachHandler{
		cfg:           cfg,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// controlMessage is a text-frame command from the client. Binary frames
// carry raw PCM16 audio and bypass this envelope.
type controlMessage struct {
	Type string `json:"type"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *CoachHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Info("Live coaching connection request", "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "coaching ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	analyzer := coach.NewStreamAnalyzer(h.cfg)
	frames := make(chan []byte, 32)
	events := analyzer.Run(ctx, frames)

	var wg sync.WaitGroup
	wg.Add(2)

	// Input loop: WebSocket -> analyzer.
	go func() {
		defer wg.Done()
		defer cancel()
		defer close(frames)
		h.inputLoop(ctx, ws, analyzer, frames)
	}()

	// Output loop: analyzer -> WebSocket.
	go func() {
		defer wg.Done()
		defer cancel()
		for event := range events {
			if err := h.writeJSON(ws, event); err != nil {
				slog.Debug("Failed to send coaching event", "error", err)
				return
			}
		}
	}()

	wg.Wait()
	slog.Info("Live coaching session ended", "mean_volume", analyzer.MeanVolume())
}

func (h *CoachHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *CoachHandler) inputLoop(ctx context.Context, ws *websocket.Conn, analyzer *coach.StreamAnalyzer, frames chan<- []byte) {
	for {
		msgType, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}

		if msgType == websocket.MessageBinary {
			select {
			case frames <- message:
			default:
				// Analyzer is behind; dropping audio keeps feedback fresh.
			}
			continue
		}

		var msg controlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Debug("Ignoring malformed control message", "error", err)
			continue
		}

		switch msg.Type {
		case "ping":
			if err := h.writeJSON(ws, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		case "start", "reset":
			// A fresh answer segment discards the previous one's level.
			analyzer.Reset()
		case "stop":
			return
		}
	}
}

func (h *CoachHandler) writeJSON(ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(context.Background(), websocket.MessageText, data)
}

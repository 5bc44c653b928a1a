package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/workflow"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	eventBuffer = 64
)

// Events streams session changes over a WebSocket. The first message is the
// full state; each later message names the field that changed and carries a
// Seq above it. Events are dropped for a listener that falls behind. The
// socket is closed normally once the session is closed or evicted.
func (h *Handler) Events(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}

	events := make(chan workflow.Event, eventBuffer)
	cancel := e.Session.Subscribe(func(ev workflow.Event) {
		select {
		case events <- ev:
		default:
			h.logger.Debug("dropping session event", zap.Stringer("session", e.ID), zap.String("kind", string(ev.Kind)))
		}
	})
	snap := e.Session.SnapshotEvent()

	// read until the peer goes away; pongs keep the session alive
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			h.sessions.Touch(e)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// write events
	go func() {
		defer conn.Close()
		defer cancel()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snap); err != nil {
			h.logger.Sugar().Warn("ws write error: ", err)
			return
		}
		for {
			select {
			case <-closed:
				return
			case <-e.Session.Done():
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			case ev := <-events:
				if ev.Seq <= snap.Seq {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ev); err != nil {
					h.logger.Sugar().Warn("ws write error: ", err)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

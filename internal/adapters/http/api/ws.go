package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goalfeed/videprinter/internal/adapters/bus"
	"github.com/goalfeed/videprinter/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// wsEnvelope frames one bus message on the wire.
type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleWebSocket serves the live event feed over a WebSocket connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	sub := s.deps.Subscribe()
	closed := make(chan struct{})

	go s.wsReadPump(conn, closed)
	s.wsWritePump(conn, sub.C, closed)

	s.deps.Unsubscribe(sub.ID)
	_ = conn.Close()
}

// wsReadPump discards client frames and signals when the peer goes away.
func (s *Server) wsReadPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) wsWritePump(conn *websocket.Conn, messages <-chan bus.Message, closed <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, open := <-messages:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			frame, err := json.Marshal(wsEnvelope{Type: msg.Topic, Data: msg.Payload})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

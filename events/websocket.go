package events

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a different origin than the api
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler upgrades dashboard connections and attaches them to the hub
type WebsocketHandler struct {
	hub    *Hub
	logger *zap.SugaredLogger
}

func NewWebsocketHandler(hub *Hub, logger *zap.SugaredLogger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:    hub,
		logger: logger,
	}
}

func (w *WebsocketHandler) Connect(ec echo.Context) error {
	conn, err := upgrader.Upgrade(ec.Response(), ec.Request(), nil)
	if err != nil {
		// the upgrader has already replied to the client
		w.logger.Warnw("unable to upgrade websocket connection", "error", err)
		return nil
	}

	client := NewClient()
	w.hub.Register(client)
	w.logger.Debugw("dashboard connected", "clientId", client.ID)

	go w.writePump(client, conn)
	go w.readPump(client, conn)

	return nil
}

func (w *WebsocketHandler) readPump(client *Client, conn *websocket.Conn) {
	defer func() {
		w.hub.Unregister(client)
		_ = conn.Close()
		w.logger.Debugw("dashboard disconnected", "clientId", client.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			w.logger.Debugw("ignoring malformed client message", "clientId", client.ID, "error", err)
			continue
		}
		w.hub.ProcessMessage(client, msg)
	}
}

func (w *WebsocketHandler) writePump(client *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

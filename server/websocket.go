package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn     *websocket.Conn
	server   *Server
	sendChan chan WSResponse
}

// handleWebSocket serves move requests over a long-lived connection, one
// search at a time per connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &wsClient{conn: conn, server: s, sendChan: make(chan WSResponse, 16)}
	go client.writePump()
	client.readPump(r)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *wsClient) readPump(r *http.Request) {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(r, msg)
	}
}

func (c *wsClient) handleMessage(r *http.Request, msg WSMessage) {
	switch msg.Type {
	case "move":
		var req MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
			return
		}
		resp, err := c.server.findMove(r.Context(), req)
		if err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
			return
		}
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

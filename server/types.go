package server

import (
	"encoding/json"

	"connect4/searcher"
)

// MoveRequest is the body of POST /move and the payload of a WebSocket move
// message.
type MoveRequest struct {
	Board    [][]int `json:"board"`
	Player   int     `json:"player"`             // Player to move, 1 or 2
	Col      int     `json:"col"`                // Column of the last move, -1 on an empty board
	Level    int     `json:"level,omitempty"`    // Difficulty, defaults to meta.DEFAULT_LEVEL
	Playouts int     `json:"playouts,omitempty"` // Overrides the level's budget
}

// MoveResponse is the verbose answer to a move request.
type MoveResponse struct {
	ID       string               `json:"id"`
	Column   int                  `json:"column"`
	Playouts int                  `json:"playouts"`
	Duration float64              `json:"duration"` // Milliseconds
	Children []searcher.ChildStat `json:"children"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WSMessage is a client message on the WebSocket.
type WSMessage struct {
	Type    string          `json:"type"` // "move" or "ping"
	ID      string          `json:"id"`   // Echoed in the response
	Payload json.RawMessage `json:"payload"`
}

// WSResponse is a server message on the WebSocket.
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error" or "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

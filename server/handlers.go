package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"connect4/game"
	"connect4/meta"
	"connect4/searcher"
	"connect4/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

var ErrInvalidPlayouts = errors.New("invalid playout budget")

// findMove runs one search for req on a fresh engine.
func (s *Server) findMove(ctx context.Context, req MoveRequest) (MoveResponse, error) {
	playouts, err := s.playouts(req)
	if err != nil {
		return MoveResponse{}, err
	}
	state, err := game.FromSnapshot(req.Board, req.Player, req.Col)
	if err != nil {
		return MoveResponse{}, err
	}

	id := uuid.New().String()
	start := time.Now()
	result, err := s.newEngine().Search(state, playouts)
	if err != nil {
		return MoveResponse{}, err
	}
	elapsed := time.Since(start)

	log.Info().
		Str("id", id).
		Int("level", req.Level).
		Int("playouts", playouts).
		Int("column", result.Column).
		Dur("duration", elapsed).
		Msg("move served")

	if s.store != nil {
		move := store.Move{
			ID:       id,
			Time:     start,
			Board:    req.Board,
			Player:   req.Player,
			LastCol:  req.Col,
			Level:    req.Level,
			Playouts: playouts,
			Column:   result.Column,
			Duration: elapsed,
		}
		// The move is served even when logging fails
		if err := s.store.RecordMove(ctx, move); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("failed to record move")
		}
	}

	return MoveResponse{
		ID:       id,
		Column:   result.Column,
		Playouts: playouts,
		Duration: float64(elapsed) / float64(time.Millisecond),
		Children: result.Children,
	}, nil
}

func (s *Server) playouts(req MoveRequest) (int, error) {
	if req.Playouts != 0 {
		if req.Playouts < 0 || req.Playouts > meta.MAX_PLAYOUTS {
			return 0, errors.Wrapf(ErrInvalidPlayouts, "%d outside [1, %d]", req.Playouts, meta.MAX_PLAYOUTS)
		}
		return req.Playouts, nil
	}
	level := req.Level
	if level == 0 {
		level = meta.DEFAULT_LEVEL
	}
	return s.config.Search.Difficulties.Playouts(level)
}

// clientError reports whether err was caused by the request.
func clientError(err error) bool {
	for _, target := range []error{
		game.ErrColumnOutOfRange,
		game.ErrColumnFull,
		game.ErrGameOver,
		game.ErrMalformedSnapshot,
		searcher.ErrTerminalState,
		searcher.ErrInsufficientPlayouts,
		meta.ErrUnknownLevel,
		ErrInvalidPlayouts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if clientError(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// handleMove answers with the bare column, or the full search summary when
// the verbose query parameter is set.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad request: " + err.Error()})
		return
	}

	resp, err := s.findMove(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.URL.Query().Get("verbose") {
	case "", "0", "false":
		writeJSON(w, http.StatusOK, resp.Column)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"levels": s.config.Search.Difficulties.Levels(),
	})
}

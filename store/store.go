package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS moves (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	board TEXT NOT NULL,
	player INTEGER NOT NULL,
	last_col INTEGER NOT NULL,
	level INTEGER NOT NULL,
	playouts INTEGER NOT NULL,
	col INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	experiment TEXT NOT NULL,
	agent1 INTEGER NOT NULL,
	agent2 INTEGER NOT NULL,
	starting_player INTEGER NOT NULL,
	winner INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at INTEGER NOT NULL,
	total_moves INTEGER NOT NULL
);
`

// Move is one move served to a client.
type Move struct {
	ID       string
	Time     time.Time
	Board    [][]int
	Player   int
	LastCol  int
	Level    int
	Playouts int
	Column   int
	Duration time.Duration
}

// Game is one finished experiment game.
type Game struct {
	ID             string
	Experiment     string
	Agent1         int
	Agent2         int
	StartingPlayer int
	Winner         int
	StartTime      time.Time
	EndTime        time.Time
	TotalMoves     int
}

// Store logs served moves and experiment games to SQLite. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates the database file and its directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create tables")
	}

	log.Info().Str("path", path).Msg("database initialized")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordMove(ctx context.Context, m Move) error {
	board, err := json.Marshal(m.Board)
	if err != nil {
		return errors.Wrap(err, "failed to encode board")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO moves (id, created_at, board, player, last_col, level, playouts, col, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Time.UnixNano(), string(board), m.Player, m.LastCol, m.Level, m.Playouts, m.Column, int64(m.Duration),
	)
	return errors.Wrapf(err, "failed to save move %s", m.ID)
}

// RecentMoves returns up to limit moves, newest first.
func (s *Store) RecentMoves(ctx context.Context, limit int) ([]Move, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, board, player, last_col, level, playouts, col, duration_ns
		FROM moves ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query moves")
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			m        Move
			created  int64
			board    string
			duration int64
		)
		if err := rows.Scan(&m.ID, &created, &board, &m.Player, &m.LastCol, &m.Level, &m.Playouts, &m.Column, &duration); err != nil {
			return nil, errors.Wrap(err, "failed to scan move")
		}
		if err := json.Unmarshal([]byte(board), &m.Board); err != nil {
			return nil, errors.Wrapf(err, "failed to decode board of move %s", m.ID)
		}
		m.Time = time.Unix(0, created)
		m.Duration = time.Duration(duration)
		moves = append(moves, m)
	}
	return moves, errors.Wrap(rows.Err(), "failed to read moves")
}

func (s *Store) RecordGame(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, experiment, agent1, agent2, starting_player, winner, started_at, ended_at, total_moves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Experiment, g.Agent1, g.Agent2, g.StartingPlayer, g.Winner, g.StartTime.UnixNano(), g.EndTime.UnixNano(), g.TotalMoves,
	)
	return errors.Wrapf(err, "failed to save game %s", g.ID)
}

// Wins counts the games of an experiment won by the given agent, and the
// games it played.
func (s *Store) Wins(ctx context.Context, experiment string, agentID int) (wins, played int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE
				WHEN winner = 1 AND agent1 = ? THEN 1
				WHEN winner = 2 AND agent2 = ? THEN 1
				ELSE 0 END), 0),
			COUNT(*)
		FROM games
		WHERE experiment = ? AND (agent1 = ? OR agent2 = ?)`,
		agentID, agentID, experiment, agentID, agentID)
	err = row.Scan(&wins, &played)
	return wins, played, errors.Wrap(err, "failed to count wins")
}

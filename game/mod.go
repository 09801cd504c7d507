package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// Board geometry and win condition
const (
	Rows          = 6
	Cols          = 7
	ConnectLength = 4
)

// Player identifies the owner of a cell, Empty for an unoccupied one.
type Player int

const (
	Empty Player = iota
	One
	Two
)

// Opponent returns the other player of the two-player cycle.
func (p Player) Opponent() Player {
	return 1 + (p % 2)
}

func (p Player) Valid() bool {
	return p == One || p == Two
}

// Status of a state: InProgress, Draw, or the id of the winning player.
type Status int

const (
	InProgress Status = -1
	Draw       Status = 0
)

// Win returns the status of a game won by player.
func Win(player Player) Status {
	return Status(player)
}

func (s Status) Terminal() bool {
	return s != InProgress
}

// Winner returns the winning player, or Empty for draws and unfinished games.
func (s Status) Winner() Player {
	if s == InProgress {
		return Empty
	}
	return Player(s)
}

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("win(%d)", int(s))
	}
}

var (
	ErrColumnOutOfRange  = errors.New("column out of range")
	ErrColumnFull        = errors.New("column is full")
	ErrGameOver          = errors.New("game is over - no moves allowed")
	ErrMalformedSnapshot = errors.New("malformed board snapshot")
)

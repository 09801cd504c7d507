package game

import (
	"strings"

	"github.com/pkg/errors"
)

// Grid is the board, row 0 is the top and row Rows-1 the bottom.
type Grid [Rows][Cols]Player

// State is an immutable board position: the grid, the player to move and the
// game status. Operations on State always return a new copy.
type State struct {
	grid   Grid
	player Player
	status Status
	last   int // Column of the last move, -1 before the first
}

// NewState returns the empty board with player One to move.
func NewState() State {
	return State{player: One, status: InProgress, last: -1}
}

func (s State) Grid() Grid {
	return s.grid
}

func (s State) Player() Player {
	return s.player
}

func (s State) Status() Status {
	return s.status
}

// LastColumn returns the column of the move that produced this state, or -1.
func (s State) LastColumn() int {
	return s.last
}

func (s State) At(row, col int) Player {
	return s.grid[row][col]
}

// OpenColumns returns the columns whose top cell is empty, in ascending order.
func (s State) OpenColumns() []int {
	return s.grid.openColumns(make([]int, 0, Cols))
}

// LegalColumns is OpenColumns for a game in progress and nothing once the game
// is over.
func (s State) LegalColumns() []int {
	if s.status.Terminal() {
		return nil
	}
	return s.OpenColumns()
}

// DestinationRow returns the row a piece dropped in col lands on.
func (s State) DestinationRow(col int) (int, error) {
	if col < 0 || col >= Cols {
		return -1, errors.Wrapf(ErrColumnOutOfRange, "column %d", col)
	}
	row := s.grid.destinationRow(col)
	if row < 0 {
		return -1, errors.Wrapf(ErrColumnFull, "column %d", col)
	}
	return row, nil
}

// ConnectionAt reports whether the piece at (row, col) is part of a run of at
// least ConnectLength identical pieces.
func (s State) ConnectionAt(row, col int) bool {
	return s.grid.connectionAt(row, col)
}

// StatusAfterMove derives the status from the last move played at (row, col).
func (s State) StatusAfterMove(row, col int) Status {
	return s.grid.statusAfterMove(row, col)
}

// Play drops the mover's piece in col and returns the resulting state. The
// receiver is left untouched.
func (s State) Play(col int) (State, error) {
	if s.status.Terminal() {
		return s, ErrGameOver
	}
	row, err := s.DestinationRow(col)
	if err != nil {
		return s, err
	}
	next := s
	next.grid[row][col] = s.player
	next.status = next.grid.statusAfterMove(row, col)
	next.player = s.player.Opponent()
	next.last = col
	return next, nil
}

// Scratch returns a private mutable copy of the state for simulations.
func (s State) Scratch() *Scratch {
	return &Scratch{grid: s.grid, player: s.player, status: s.status}
}

func (s State) String() string {
	var b strings.Builder
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			switch s.grid[row][col] {
			case One:
				b.WriteByte('X')
			case Two:
				b.WriteByte('O')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ChangedColumn returns the single column in which two grids differ, used to
// recover the move that links a parent position to its child.
func ChangedColumn(before, after Grid) (int, bool) {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if before[row][col] != after[row][col] {
				return col, true
			}
		}
	}
	return -1, false
}

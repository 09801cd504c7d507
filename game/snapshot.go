package game

import "github.com/pkg/errors"

// FromSnapshot rebuilds a State from a raw grid of cell values, the player to
// move and the column of the last piece played. The status is derived from the
// last move's cell only, so lastCol must name the column that was actually
// played last. lastCol may be -1 for an empty grid.
func FromSnapshot(board [][]int, player int, lastCol int) (State, error) {
	var s State
	if len(board) != Rows {
		return s, errors.Wrapf(ErrMalformedSnapshot, "expected %d rows, got %d", Rows, len(board))
	}
	pieces := 0
	for row, cells := range board {
		if len(cells) != Cols {
			return s, errors.Wrapf(ErrMalformedSnapshot, "row %d: expected %d columns, got %d", row, Cols, len(cells))
		}
		for col, v := range cells {
			p := Player(v)
			if p != Empty && !p.Valid() {
				return s, errors.Wrapf(ErrMalformedSnapshot, "cell (%d, %d): invalid value %d", row, col, v)
			}
			s.grid[row][col] = p
			if p != Empty {
				pieces++
			}
		}
	}
	if err := checkGravity(&s.grid); err != nil {
		return s, err
	}

	s.player = Player(player)
	if !s.player.Valid() {
		return s, errors.Wrapf(ErrMalformedSnapshot, "invalid player %d", player)
	}

	if lastCol == -1 && pieces == 0 {
		s.status = InProgress
		s.last = -1
		return s, nil
	}
	if lastCol < 0 || lastCol >= Cols {
		return s, errors.Wrapf(ErrMalformedSnapshot, "last move column %d out of range", lastCol)
	}
	row := topRow(&s.grid, lastCol)
	if row < 0 {
		return s, errors.Wrapf(ErrMalformedSnapshot, "last move column %d is empty", lastCol)
	}
	s.status = s.grid.statusAfterMove(row, lastCol)
	s.last = lastCol
	return s, nil
}

// Snapshot is the inverse of FromSnapshot's grid decoding.
func (s State) Snapshot() [][]int {
	board := make([][]int, Rows)
	for row := range board {
		board[row] = make([]int, Cols)
		for col := range board[row] {
			board[row][col] = int(s.grid[row][col])
		}
	}
	return board
}

// topRow returns the highest occupied row in col, or -1.
func topRow(g *Grid, col int) int {
	for row := 0; row < Rows; row++ {
		if g[row][col] != Empty {
			return row
		}
	}
	return -1
}

func checkGravity(g *Grid) error {
	for col := 0; col < Cols; col++ {
		for row := 0; row < Rows-1; row++ {
			if g[row][col] != Empty && g[row+1][col] == Empty {
				return errors.Wrapf(ErrMalformedSnapshot, "floating piece at (%d, %d)", row, col)
			}
		}
	}
	return nil
}

package game

import "fmt"

// Scratch is a mutable board used only inside rollouts. It is created from a
// State by copy and never shares memory with one.
type Scratch struct {
	grid   Grid
	player Player
	status Status
	open   []int
}

func (s *Scratch) Player() Player {
	return s.player
}

func (s *Scratch) Status() Status {
	return s.status
}

// OpenColumns returns the open columns. The slice is reused by the next call.
func (s *Scratch) OpenColumns() []int {
	s.open = s.grid.openColumns(s.open[:0])
	return s.open
}

// Play applies a move in place. Playing a full column or a finished game is a
// caller bug.
func (s *Scratch) Play(col int) {
	if s.status.Terminal() {
		panic("scratch: move played after game over")
	}
	row := s.grid.destinationRow(col)
	if row < 0 {
		panic(fmt.Sprintf("scratch: column %d is full", col))
	}
	s.grid[row][col] = s.player
	s.status = s.grid.statusAfterMove(row, col)
	s.player = s.player.Opponent()
}

package game

// Directions walked by the connection check: row, column, and both diagonals.
// Each is also walked in the opposite sense.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func (g *Grid) openColumns(buf []int) []int {
	for col := 0; col < Cols; col++ {
		if g[0][col] == Empty {
			buf = append(buf, col)
		}
	}
	return buf
}

func (g *Grid) hasOpenColumn() bool {
	for col := 0; col < Cols; col++ {
		if g[0][col] == Empty {
			return true
		}
	}
	return false
}

// destinationRow returns -1 for a full column. col must be in range.
func (g *Grid) destinationRow(col int) int {
	for row := Rows - 1; row >= 0; row-- {
		if g[row][col] == Empty {
			return row
		}
	}
	return -1
}

func (g *Grid) connectionAt(row, col int) bool {
	player := g[row][col]
	if player == Empty {
		return false
	}
	for _, d := range directions {
		count := 1 + g.run(row, col, d[0], d[1], player) + g.run(row, col, -d[0], -d[1], player)
		if count >= ConnectLength {
			return true
		}
	}
	return false
}

// run counts consecutive cells owned by player starting next to (row, col)
// and stepping by (dr, dc). It stops at the first mismatch or after
// ConnectLength-1 cells.
func (g *Grid) run(row, col, dr, dc int, player Player) int {
	count := 0
	for i := 1; i < ConnectLength; i++ {
		r, c := row+dr*i, col+dc*i
		if r < 0 || r >= Rows || c < 0 || c >= Cols || g[r][c] != player {
			break
		}
		count++
	}
	return count
}

func (g *Grid) statusAfterMove(row, col int) Status {
	if g.connectionAt(row, col) {
		return Win(g[row][col])
	}
	if !g.hasOpenColumn() {
		return Draw
	}
	return InProgress
}

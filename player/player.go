package player

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
)

const (
	colorOne = "#E88388"
	colorTwo = "#DBAB79"
)

// Human is an agent that reads its moves from a terminal. Columns are
// entered 1-based.
type Human struct {
	in  *bufio.Scanner
	out *termenv.Output
}

func NewHuman(in io.Reader, out *termenv.Output) *Human {
	return &Human{in: bufio.NewScanner(in), out: out}
}

func (h *Human) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	start := time.Now()
	for {
		fmt.Fprint(h.out, Render(h.out, state))
		fmt.Fprintf(h.out, "%s to move, choose a column (1-%d): ", Mark(h.out, state.Player()), game.Cols)
		if !h.in.Scan() {
			err := h.in.Err()
			if err == nil {
				err = io.EOF
			}
			return -1, metrics.SearchMetric{}, errors.Wrap(err, "no move entered")
		}

		col, err := strconv.Atoi(strings.TrimSpace(h.in.Text()))
		if err != nil {
			fmt.Fprintln(h.out, "not a column number")
			continue
		}
		col--
		if _, err := state.DestinationRow(col); err != nil {
			fmt.Fprintln(h.out, err)
			continue
		}
		return col, metrics.SearchMetric{Duration: time.Since(start)}, nil
	}
}

// Mark returns the colored piece of a player.
func Mark(out *termenv.Output, p game.Player) string {
	switch p {
	case game.One:
		return out.String("X").Foreground(out.Color(colorOne)).Bold().String()
	case game.Two:
		return out.String("O").Foreground(out.Color(colorTwo)).Bold().String()
	default:
		return "."
	}
}

// Render draws the board with column numbers below it. The last piece played
// is underlined.
func Render(out *termenv.Output, state game.State) string {
	last := state.LastColumn()
	lastRow := -1
	if last >= 0 {
		for row := 0; row < game.Rows; row++ {
			if state.At(row, last) != game.Empty {
				lastRow = row
				break
			}
		}
	}

	var b strings.Builder
	for row := 0; row < game.Rows; row++ {
		b.WriteString("|")
		for col := 0; col < game.Cols; col++ {
			mark := Mark(out, state.At(row, col))
			if row == lastRow && col == last {
				mark = out.String(mark).Underline().String()
			}
			b.WriteString(mark)
			b.WriteString("|")
		}
		b.WriteString("\n")
	}
	b.WriteString(" ")
	for col := 1; col <= game.Cols; col++ {
		b.WriteString(strconv.Itoa(col))
		b.WriteString(" ")
	}
	b.WriteString("\n")
	return b.String()
}

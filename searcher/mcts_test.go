package searcher

import (
	"testing"

	"connect4/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// threeInARow has player one on the bottom row in columns 0-2 with column 3
// open and player one to move.
func threeInARow(t *testing.T) game.State {
	t.Helper()
	board := make([][]int, game.Rows)
	for row := range board {
		board[row] = make([]int, game.Cols)
	}
	board[5][0], board[5][1], board[5][2] = 1, 1, 1
	board[4][0], board[4][1], board[5][6] = 2, 2, 2

	state, err := game.FromSnapshot(board, 1, 6)
	require.NoError(t, err)
	require.Equal(t, game.InProgress, state.Status())
	return state
}

func drawState(t *testing.T) game.State {
	t.Helper()
	board := make([][]int, game.Rows)
	for row := range board {
		board[row] = make([]int, game.Cols)
		for col := range board[row] {
			board[row][col] = 2
			if (col+2*row)%4 < 2 {
				board[row][col] = 1
			}
		}
	}
	state, err := game.FromSnapshot(board, 1, 0)
	require.NoError(t, err)
	return state
}

func randomPosition(t *testing.T, rng *rand.Rand, moves int) game.State {
	t.Helper()
	for {
		state := game.NewState()
		for i := 0; i < moves && !state.Status().Terminal(); i++ {
			open := state.OpenColumns()
			next, err := state.Play(open[rng.Intn(len(open))])
			require.NoError(t, err)
			state = next
		}
		if !state.Status().Terminal() {
			return state
		}
	}
}

func TestMove(t *testing.T) {
	t.Run("returning an open column for any position in progress", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 50; i++ {
			state := randomPosition(t, rng, rng.Intn(30))
			m := NewMCTS(WithSeed(uint64(i)))

			col, err := m.Move(state, 200)

			require.NoError(t, err)
			require.Contains(t, state.OpenColumns(), col)
		}
	})

	t.Run("finding the immediate win", func(t *testing.T) {
		state := threeInARow(t)
		for seed := uint64(1); seed <= 5; seed++ {
			m := NewMCTS(WithSeed(seed))

			col, err := m.Move(state, 1000)

			require.NoError(t, err)
			require.Equal(t, 3, col, "Seed %d should complete the row", seed)
		}
	})

	t.Run("blocking the opponent's immediate win", func(t *testing.T) {
		// Player two threatens column 3 on the bottom row, player one to move
		state := mustState(t, 6, 0, 6, 1, 5, 2)
		for seed := uint64(1); seed <= 3; seed++ {
			m := NewMCTS(WithSeed(seed))

			col, err := m.Move(state, 2000)

			require.NoError(t, err)
			require.Equal(t, 3, col, "Seed %d should block the row", seed)
		}
	})

	t.Run("refusing a finished game", func(t *testing.T) {
		m := NewMCTS(WithSeed(1))

		_, err := m.Move(drawState(t), 100)
		require.ErrorIs(t, err, ErrTerminalState)

		_, err = m.Move(mustState(t, 0, 6, 1, 6, 2, 5, 3), 100)
		require.ErrorIs(t, err, ErrTerminalState)
	})

	t.Run("refusing fewer playouts than legal columns", func(t *testing.T) {
		m := NewMCTS(WithSeed(1))

		_, err := m.Move(game.NewState(), game.Cols-1)

		require.ErrorIs(t, err, ErrInsufficientPlayouts)
	})

	t.Run("expanding every root child with the minimum budget", func(t *testing.T) {
		m := NewMCTS(WithSeed(1))

		result, err := m.Search(game.NewState(), game.Cols)

		require.NoError(t, err)
		require.Len(t, result.Children, game.Cols)
		for _, child := range result.Children {
			require.Equal(t, 1, child.Visits, "Each root child should be visited exactly once")
		}
	})

	t.Run("reproducing the same choice with the same seed", func(t *testing.T) {
		state := mustState(t, 3, 3, 4)

		first, err := NewMCTS(WithSeed(99)).Search(state, 500)
		require.NoError(t, err)
		second, err := NewMCTS(WithSeed(99)).Search(state, 500)
		require.NoError(t, err)

		require.Equal(t, first.Column, second.Column)
		require.Equal(t, first.Children, second.Children)
	})
}

func TestSearchTreeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 10; i++ {
		state := randomPosition(t, rng, rng.Intn(20))
		playouts := 300 + rng.Intn(300)
		m := NewMCTS(WithSeed(uint64(i)))

		tr, err := m.search(state, playouts)
		require.NoError(t, err)

		require.Equal(t, playouts, tr.nodes[tr.root()].visits, "Every playout should pass through the root")
		for id := range tr.nodes {
			n := tr.nodes[id]
			sum := 0
			for _, child := range n.children {
				sum += tr.nodes[child].visits
				require.NotContains(t, n.unexplored, tr.column(child),
					"Expanded columns should not remain unexplored")
			}
			if nodeID(id) == tr.root() {
				require.Equal(t, n.visits, sum, "Root visits should all be attributed to children")
				continue
			}
			require.GreaterOrEqual(t, n.visits, 1, "Every node receives a rollout when created")
			if n.state.Status().Terminal() {
				require.Empty(t, n.children)
			} else {
				require.Equal(t, n.visits-1, sum, "All but the first visit should go to children")
			}
			require.LessOrEqual(t, abs(n.score), n.visits)
		}
	}
}

func TestSearchResult(t *testing.T) {
	m := NewMCTS(WithSeed(5), WithMetrics())

	result, err := m.Search(game.NewState(), 400)

	require.NoError(t, err)
	total := 0
	best := result.Children[0]
	for _, child := range result.Children {
		total += child.Visits
		if child.Visits > best.Visits {
			best = child
		}
	}
	require.Equal(t, 400, total)
	require.Equal(t, best.Column, result.Column, "Chosen column should be the most visited child")
	require.Equal(t, 400, result.Metric.Playouts)
	require.Greater(t, result.Metric.TreeSize, game.Cols)
	require.Greater(t, result.Metric.MaxDepth, 1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

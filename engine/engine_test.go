package engine

import (
	"context"
	"net/http/httptest"
	"testing"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher"
	"connect4/searcher/agent"
	"connect4/server"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

func (a randomAgent) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	open := state.OpenColumns()
	return open[a.rng.Intn(len(open))], metrics.SearchMetric{}, nil
}

type fixedAgent struct {
	col int
	err error
}

func (a fixedAgent) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	return a.col, metrics.SearchMetric{}, a.err
}

func newRandomAgent(seed uint64) agent.Agent {
	return randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()

	t.Run("random games end within the board size", func(t *testing.T) {
		for seed := uint64(0); seed < 20; seed++ {
			e := NewLocal(newRandomAgent(seed), newRandomAgent(seed+100))
			gameMetric, moveMetrics, err := e.Run(ctx)

			require.NoError(t, err)
			require.True(t, e.State().Status().Terminal())
			require.Equal(t, int(e.State().Status().Winner()), gameMetric.Winner)
			require.Equal(t, len(moveMetrics), gameMetric.TotalMoves)
			require.LessOrEqual(t, gameMetric.TotalMoves, game.Rows*game.Cols)
			require.NotEmpty(t, gameMetric.GameID)
			require.Equal(t, 1, gameMetric.StartingPlayer)
			for i, mm := range moveMetrics {
				require.Equal(t, i+1, mm.Step)
				require.Equal(t, 1+i%2, mm.Player, "Players should alternate")
			}
		}
	})

	t.Run("observer sees every move", func(t *testing.T) {
		var cols []int
		e := NewLocal(newRandomAgent(1), newRandomAgent(2), WithObserver(func(step int, player game.Player, col int, state game.State) {
			require.Equal(t, col, state.LastColumn())
			cols = append(cols, col)
		}))
		_, moveMetrics, err := e.Run(ctx)
		require.NoError(t, err)
		require.Len(t, cols, len(moveMetrics))
	})

	t.Run("search agents finish a game", func(t *testing.T) {
		a1 := agent.NewEvaluationAgent(searcher.NewMCTS(searcher.WithSeed(1), searcher.WithMetrics()), 50)
		a2 := agent.NewEvaluationAgent(searcher.NewMCTS(searcher.WithSeed(2), searcher.WithMetrics()), 50)
		gameMetric, moveMetrics, err := NewLocal(a1, a2).Run(ctx)

		require.NoError(t, err)
		require.NotEmpty(t, moveMetrics)
		require.Equal(t, 50, moveMetrics[0].Playouts)
		require.False(t, gameMetric.EndTime.Before(gameMetric.StartTime))
	})

	t.Run("starting from a given state", func(t *testing.T) {
		state, err := game.NewState().Play(3)
		require.NoError(t, err)
		gameMetric, moveMetrics, err := NewLocal(newRandomAgent(1), newRandomAgent(2), WithState(state)).Run(ctx)

		require.NoError(t, err)
		require.Equal(t, 2, gameMetric.StartingPlayer)
		require.Equal(t, 2, moveMetrics[0].Player)
	})

	t.Run("agent errors stop the game", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := NewLocal(fixedAgent{err: boom}, newRandomAgent(1)).Run(ctx)
		require.True(t, errors.Is(err, boom))
	})

	t.Run("illegal moves stop the game", func(t *testing.T) {
		_, _, err := NewLocal(fixedAgent{col: game.Cols}, newRandomAgent(1)).Run(ctx)
		require.True(t, errors.Is(err, game.ErrColumnOutOfRange))
	})

	t.Run("cancelled context stops the game", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, moveMetrics, err := NewLocal(newRandomAgent(1), newRandomAgent(2)).Run(cancelled)
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, moveMetrics)
	})

	t.Run("missing agents panic", func(t *testing.T) {
		require.Panics(t, func() { NewLocal(nil, newRandomAgent(1)) })
	})
}

func TestRemote(t *testing.T) {
	ts := httptest.NewServer(server.New(meta.DefaultConfig(), server.WithSeed(1)).Handler())
	defer ts.Close()

	t.Run("plays a full game against a local agent", func(t *testing.T) {
		e := NewLocal(NewRemote(ts.URL, 1, nil), newRandomAgent(3))
		gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, len(moveMetrics), gameMetric.TotalMoves)
		require.True(t, e.State().Status().Terminal())
	})

	t.Run("server errors are returned", func(t *testing.T) {
		_, _, err := NewRemote(ts.URL+"/", 9, nil).FindMove(game.NewState())
		require.Error(t, err)
		require.Contains(t, err.Error(), "400")
	})
}

package searcher

import (
	"testing"

	"connect4/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestRandomPolicy(t *testing.T) {
	t.Run("choosing only open columns", func(t *testing.T) {
		policy := NewRandomPolicy(rand.New(rand.NewSource(1)))
		scratch := mustState(t, 0, 0, 0, 0, 0, 0, 6, 6, 6, 6, 6, 6).Scratch()

		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			col := policy.Choose(scratch)
			require.Contains(t, []int{1, 2, 3, 4, 5}, col)
			seen[col] = true
		}
		require.Len(t, seen, 5, "Every open column should eventually be chosen")
	})

	t.Run("panicking without open columns", func(t *testing.T) {
		policy := NewRandomPolicy(rand.New(rand.NewSource(1)))
		scratch := drawState(t).Scratch()

		require.Panics(t, func() { policy.Choose(scratch) })
	})
}

func TestRollout(t *testing.T) {
	t.Run("playing to a finished game", func(t *testing.T) {
		scorer := NewRolloutScorer(NewRandomPolicy(rand.New(rand.NewSource(2))))
		for i := 0; i < 100; i++ {
			winner := scorer.Rollout(game.NewState())
			require.Contains(t, []game.Player{game.Empty, game.One, game.Two}, winner)
		}
	})

	t.Run("returning the outcome of a finished game as is", func(t *testing.T) {
		scorer := NewRolloutScorer(NewRandomPolicy(rand.New(rand.NewSource(2))))

		require.Equal(t, game.One, scorer.Rollout(mustState(t, 0, 6, 1, 6, 2, 5, 3)))
		require.Equal(t, game.Empty, scorer.Rollout(drawState(t)))
	})

	t.Run("leaving the source state untouched", func(t *testing.T) {
		scorer := NewRolloutScorer(NewRandomPolicy(rand.New(rand.NewSource(2))))
		state := mustState(t, 2, 3)
		before := state

		scorer.Rollout(state)

		require.Equal(t, before, state)
	})
}

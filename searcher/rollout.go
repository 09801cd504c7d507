package searcher

import (
	"connect4/game"

	"golang.org/x/exp/rand"
)

// RolloutPolicy picks the next move of a simulation.
type RolloutPolicy interface {
	Choose(s *game.Scratch) int
}

// RandomPolicy picks uniformly among the open columns.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

func (p *RandomPolicy) Choose(s *game.Scratch) int {
	open := s.OpenColumns()
	if len(open) == 0 {
		panic("rollout policy called without open columns")
	}
	return open[p.rng.Intn(len(open))]
}

// RolloutScorer estimates a state by playing it out to the end.
type RolloutScorer struct {
	policy RolloutPolicy
}

func NewRolloutScorer(policy RolloutPolicy) *RolloutScorer {
	return &RolloutScorer{policy: policy}
}

// Rollout returns the winner of one simulated game from state, game.Empty for
// a draw. The simulation runs on a private scratch board.
func (r *RolloutScorer) Rollout(state game.State) game.Player {
	scratch := state.Scratch()
	for !scratch.Status().Terminal() {
		scratch.Play(r.policy.Choose(scratch))
	}
	return scratch.Status().Winner()
}

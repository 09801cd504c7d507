package agent

import (
	"math"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	playouts    int
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves are
// sampled in proportion to root visits raised to 1/temperature; a temperature
// of zero plays the most visited column.
func NewTrainingAgent(mcts *searcher.MCTS, playouts int, temperature float64, rng *rand.Rand) Agent {
	return trainingAgent{mcts: mcts, playouts: playouts, temperature: temperature, rng: rng}
}

func (a trainingAgent) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(state, a.playouts)
	if err != nil {
		return -1, metrics.SearchMetric{}, err
	}
	if a.temperature <= 0 {
		return findMax(result.Children), result.Metric, nil
	}
	policy := adjustTemperature(result.Children, a.temperature)
	return sample(result.Children, policy, a.rng.Float64()), result.Metric, nil
}

// adjustTemperature returns move probabilities aligned with children.
func adjustTemperature(children []searcher.ChildStat, temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(children))
	for i, child := range children {
		prob := math.Pow(float64(child.Visits), exponent)
		sum += prob
		adjusted[i] = prob
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample(children []searcher.ChildStat, policy []float64, sampled float64) int {
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return children[i].Column
		}
	}
	return children[len(children)-1].Column // Fallback in case of rounding errors
}

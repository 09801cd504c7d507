package agent

import (
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher"
)

type evaluationAgent struct {
	mcts     *searcher.MCTS
	playouts int
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS, playouts int) Agent {
	return evaluationAgent{mcts: mcts, playouts: playouts}
}

func (a evaluationAgent) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(state, a.playouts)
	if err != nil {
		return -1, metrics.SearchMetric{}, err
	}
	return result.Column, result.Metric, nil
}

// findMax returns the column with the most visits, first found on ties.
func findMax(children []searcher.ChildStat) int {
	maxColumn := -1
	maxVisits := -1
	for _, child := range children {
		if child.Visits > maxVisits {
			maxVisits = child.Visits
			maxColumn = child.Column
		}
	}
	return maxColumn
}

package agent

import (
	"connect4/experiments/metrics"
	"connect4/game"
)

type Agent interface {
	// FindMove returns a column and performance metrics (if collected) from the search
	FindMove(state game.State) (int, metrics.SearchMetric, error)
}

package engine

import (
	"context"

	"connect4/experiments/metrics"
)

type Engine interface {
	// Run plays a game till it is over and returns its metrics
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

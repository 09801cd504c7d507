package engine

import (
	"context"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher/agent"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Observer is called after every move with the resulting state.
type Observer func(step int, player game.Player, col int, state game.State)

type LocalOption func(e *Local)

// WithState starts the game from state instead of the empty board.
func WithState(state game.State) LocalOption {
	return func(e *Local) {
		e.state = state
	}
}

func WithObserver(observer Observer) LocalOption {
	return func(e *Local) {
		e.observer = observer
	}
}

// Local plays a game between two in-process agents.
type Local struct {
	state    game.State
	agents   [2]agent.Agent // Indexed by player ID - 1
	observer Observer
}

// NewLocal returns an engine where agent1 plays game.One and agent2 plays
// game.Two.
func NewLocal(agent1, agent2 agent.Agent, options ...LocalOption) *Local {
	if agent1 == nil || agent2 == nil {
		panic("need two agents")
	}
	e := &Local{
		state:  game.NewState(),
		agents: [2]agent.Agent{agent1, agent2},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Local) State() game.State {
	return e.state
}

// Run executes the game loop until the game is over.
func (e *Local) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		GameID:         uuid.New().String(),
		StartingPlayer: int(e.state.Player()),
		StartTime:      time.Now(),
	}
	log.Debug().Str("game", gameMetric.GameID).Msgf("player %d is starting", e.state.Player())

	step := 1
	var moveMetrics []metrics.MoveMetric
	for !e.state.Status().Terminal() {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}

		player := e.state.Player()
		col, searchMetric, err := e.agents[player-1].FindMove(e.state)
		if err != nil {
			return gameMetric, moveMetrics, errors.Wrapf(err, "player %d failed to move at step %d", player, step)
		}
		next, err := e.state.Play(col)
		if err != nil {
			return gameMetric, moveMetrics, errors.Wrapf(err, "player %d chose column %d at step %d", player, col, step)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			Column:       col,
			SearchMetric: searchMetric,
		})
		e.state = next
		if e.observer != nil {
			e.observer(step, player, col, next)
		}
		step++
	}

	gameMetric.Winner = int(e.state.Status().Winner())
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	log.Debug().Str("game", gameMetric.GameID).Msgf("game over after %d moves: %s", gameMetric.TotalMoves, e.state.Status())
	return gameMetric, moveMetrics, nil
}

package searcher

import (
	"time"

	"connect4/experiments/metrics"
	"connect4/game"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrTerminalState        = errors.New("cannot search from a finished game")
	ErrInsufficientPlayouts = errors.New("playout budget is below the number of legal columns")
)

type Option func(m *MCTS)

// MCTS picks moves by Monte Carlo Tree Search with random rollouts. A value
// owns its random generator and must not be shared between goroutines.
type MCTS struct {
	explorationRate float64
	rng             *rand.Rand
	scorer          *RolloutScorer
	metrics         metrics.Collector
}

// ChildStat summarizes one root child after a search.
type ChildStat struct {
	Column int `json:"column"`
	Visits int `json:"visits"`
	Score  int `json:"score"` // From the perspective of the opponent of the searching player
}

type Result struct {
	Column   int
	Children []ChildStat // In expansion order
	Metric   metrics.SearchMetric
}

func WithExplorationRate(explorationRate float64) Option {
	return func(m *MCTS) {
		if explorationRate >= 0 {
			m.explorationRate = explorationRate
		}
	}
}

// WithSeed makes the search reproducible.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		explorationRate: DefaultExplorationRate,
		metrics:         metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	m.scorer = NewRolloutScorer(NewRandomPolicy(m.rng))
	return m
}

// Move returns the column of the most visited root child after the given
// number of playouts from state.
func (m *MCTS) Move(state game.State, playouts int) (int, error) {
	t, err := m.search(state, playouts)
	if err != nil {
		return -1, err
	}
	return t.column(t.robustChild()), nil
}

// Search is Move with the root statistics and search metrics attached.
func (m *MCTS) Search(state game.State, playouts int) (Result, error) {
	t, err := m.search(state, playouts)
	if err != nil {
		return Result{Column: -1}, err
	}

	root := &t.nodes[t.root()]
	children := make([]ChildStat, 0, len(root.children))
	for _, child := range root.children {
		children = append(children, ChildStat{
			Column: t.column(child),
			Visits: t.nodes[child].visits,
			Score:  t.nodes[child].score,
		})
	}
	return Result{
		Column:   t.column(t.robustChild()),
		Children: children,
		Metric:   m.metrics.Complete(t.size()),
	}, nil
}

func (m *MCTS) search(state game.State, playouts int) (*tree, error) {
	if state.Status().Terminal() {
		return nil, errors.Wrapf(ErrTerminalState, "status %s", state.Status())
	}
	if legal := len(state.LegalColumns()); playouts < legal {
		return nil, errors.Wrapf(ErrInsufficientPlayouts, "%d playouts for %d columns", playouts, legal)
	}

	m.metrics.Start(playouts, m.explorationRate)
	t := newTree(state, m.rng)
	for i := 0; i < playouts; i++ {
		m.simulate(t)
	}

	log.Debug().
		Int("playouts", playouts).
		Int("tree_size", t.size()).
		Int("root_visits", t.nodes[t.root()].visits).
		Msg("search complete")
	return t, nil
}

func (m *MCTS) simulate(t *tree) {
	leaf, depth := t.traverse(m.explorationRate)
	state := t.nodes[leaf].state
	if state.Status().Terminal() {
		m.metrics.AddTerminalLeaf()
	}
	winner := m.scorer.Rollout(state)
	t.backup(leaf, winner)

	m.metrics.ObserveDepth(depth)
	m.metrics.AddPlayout()
}

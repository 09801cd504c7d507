package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Playouts        int
	ExplorationRate float64
	Duration        time.Duration
	TerminalLeaves  int // Playouts whose selected leaf was already a finished game
	TreeSize        int
	MaxDepth        int
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Column int
	SearchMetric
}

type GameMetric struct {
	GameID         string
	StartingPlayer int // Player ID
	Winner         int // Player ID, 0 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(playouts int, explorationRate float64)
	AddPlayout()
	AddTerminalLeaf()
	ObserveDepth(depth int)
	Complete(treeSize int) SearchMetric
}

type collector struct {
	explorationRate float64
	budget          int
	startTime       time.Time
	playouts        atomic.Int32
	terminalLeaves  atomic.Int32
	maxDepth        atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(playouts int, explorationRate float64) {
	m.startTime = time.Now()
	m.budget = playouts
	m.explorationRate = explorationRate
	m.playouts.Store(0)
	m.terminalLeaves.Store(0)
	m.maxDepth.Store(0)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddTerminalLeaf() {
	m.terminalLeaves.Add(1)
}

func (m *collector) ObserveDepth(depth int) {
	for {
		current := m.maxDepth.Load()
		if int32(depth) <= current || m.maxDepth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) Complete(treeSize int) SearchMetric {
	return SearchMetric{
		Playouts:        int(m.playouts.Load()),
		ExplorationRate: m.explorationRate,
		Duration:        time.Since(m.startTime),
		TerminalLeaves:  int(m.terminalLeaves.Load()),
		TreeSize:        treeSize,
		MaxDepth:        int(m.maxDepth.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(playouts int, explorationRate float64) {}
func (m *dummyCollector) AddPlayout()                                  {}
func (m *dummyCollector) AddTerminalLeaf()                             {}
func (m *dummyCollector) ObserveDepth(depth int)                       {}
func (m *dummyCollector) Complete(treeSize int) SearchMetric           { return SearchMetric{} }

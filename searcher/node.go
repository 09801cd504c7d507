package searcher

import (
	"math"

	"connect4/game"

	"golang.org/x/exp/rand"
)

type nodeID int32

const noParent nodeID = -1

// node is one vertex of the search tree. Children and parent are indices into
// the owning tree's arena.
type node struct {
	state      game.State
	parent     nodeID
	children   []nodeID
	unexplored []int // Shuffled legal columns not yet expanded, popped from the tail
	score      int   // Rollout wins minus losses for the player to move at this node
	visits     int
}

// tree owns every node of one search. It is discarded as a whole once the
// move is chosen.
type tree struct {
	nodes []node
	rng   *rand.Rand
}

func newTree(state game.State, rng *rand.Rand) *tree {
	t := &tree{rng: rng}
	t.add(noParent, state)
	return t
}

func (t *tree) root() nodeID {
	return 0
}

func (t *tree) size() int {
	return len(t.nodes)
}

// add appends a node for state. The unexplored order is randomized once here.
func (t *tree) add(parent nodeID, state game.State) nodeID {
	moves := state.LegalColumns()
	t.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		state:      state,
		parent:     parent,
		children:   make([]nodeID, 0, len(moves)),
		unexplored: moves,
	})
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

// expand materializes the child for the next unexplored column. It reports
// false when the node is already fully expanded.
func (t *tree) expand(id nodeID) (nodeID, bool) {
	n := &t.nodes[id]
	if len(n.unexplored) == 0 {
		return noParent, false
	}
	last := len(n.unexplored) - 1
	col := n.unexplored[last]
	n.unexplored = n.unexplored[:last]

	state, err := n.state.Play(col)
	if err != nil {
		panic("expanding an illegal column: " + err.Error())
	}
	// n must not be used past this point, add may grow the arena
	return t.add(id, state), true
}

func (t *tree) ucb(parent, child nodeID, explorationRate float64) float64 {
	c := &t.nodes[child]
	// Child score is from the opponent's perspective
	return newUCB(explorationRate, float64(t.nodes[parent].visits)).evaluate(float64(-c.score), float64(c.visits))
}

// bestChild returns the child with the strictly greatest UCB value; ties go to
// the earliest expanded child.
func (t *tree) bestChild(id nodeID, explorationRate float64) nodeID {
	children := t.nodes[id].children
	if len(children) == 0 {
		panic("node has no children")
	}

	best := children[0]
	bestValue := math.Inf(-1)
	for _, child := range children {
		if value := t.ucb(id, child, explorationRate); value > bestValue {
			bestValue = value
			best = child
		}
	}
	return best
}

// traverse descends from the root to the leaf that receives the next rollout,
// expanding at most one node on the way.
func (t *tree) traverse(explorationRate float64) (nodeID, int) {
	id := t.root()
	depth := 0
	for {
		if child, ok := t.expand(id); ok {
			return child, depth + 1
		}
		if t.nodes[id].state.Status().Terminal() {
			return id, depth
		}
		id = t.bestChild(id, explorationRate)
		depth++
	}
}

// backup records a rollout outcome on leaf and every ancestor.
func (t *tree) backup(leaf nodeID, winner game.Player) {
	for id := leaf; id != noParent; id = t.nodes[id].parent {
		n := &t.nodes[id]
		n.visits++
		if winner == game.Empty {
			continue
		}
		if winner == n.state.Player() {
			n.score++
		} else {
			n.score--
		}
	}
}

// robustChild returns the root child with the most visits, the first one
// found on ties.
func (t *tree) robustChild() nodeID {
	root := &t.nodes[t.root()]
	if len(root.children) == 0 {
		panic("node has no children")
	}
	best := root.children[0]
	for _, child := range root.children[1:] {
		if t.nodes[child].visits > t.nodes[best].visits {
			best = child
		}
	}
	return best
}

// column recovers the move leading from a node's parent to the node.
func (t *tree) column(id nodeID) int {
	n := &t.nodes[id]
	col, ok := game.ChangedColumn(t.nodes[n.parent].state.Grid(), n.state.Grid())
	if !ok {
		panic("child grid does not differ from its parent")
	}
	return col
}

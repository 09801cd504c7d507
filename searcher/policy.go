package searcher

import "math"

// DefaultExplorationRate is the UCB1 constant sqrt(2)
var DefaultExplorationRate = math.Sqrt2

type ucb struct {
	numerator float64
}

// newUCB prepares the exploration numerator c^2*ln(N) for a parent with N
// visits.
func newUCB(explorationRate float64, N float64) *ucb {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &ucb{numerator: explorationRate * explorationRate * math.Log(N)}
}

func (u ucb) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCB = q/n + c*sqrt(ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUCB(t *testing.T) {
	t.Run("panics with zero parent visits", func(t *testing.T) {
		require.Panics(t, func() {
			newUCB(math.Sqrt2, 0)
		}, "Should panic when N is 0")
	})
}

func TestUCBEvaluate(t *testing.T) {
	t.Run("computing UCB value", func(t *testing.T) {
		policy := newUCB(math.Sqrt2, 100)
		got := policy.evaluate(5.0, 10)

		expected := 5.0/10 + math.Sqrt2*math.Sqrt(math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute q/n + c*sqrt(ln(N)/n)")
	})

	t.Run("panics with zero child visits", func(t *testing.T) {
		policy := newUCB(math.Sqrt2, 100)

		require.Panics(t, func() {
			policy.evaluate(5.0, 0)
		}, "Should panic when n is 0")
	})

	t.Run("exploration term vanishes for a single parent visit", func(t *testing.T) {
		policy := newUCB(math.Sqrt2, 1)

		require.InDelta(t, -0.5, policy.evaluate(-1, 2), 0.0001,
			"ln(1) leaves only the exploitation term")
	})

	t.Run("exploration term increases with parent visits", func(t *testing.T) {
		policy1 := newUCB(math.Sqrt2, 100)
		policy2 := newUCB(math.Sqrt2, 1000)

		require.Greater(t, policy2.evaluate(5, 10), policy1.evaluate(5, 10),
			"More parent visits should increase exploration term")
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		policy := newUCB(math.Sqrt2, 100)

		require.Greater(t, policy.evaluate(5, 10), policy.evaluate(5, 20),
			"More child visits should decrease exploration term")
	})

	t.Run("zero exploration rate is pure exploitation", func(t *testing.T) {
		policy := newUCB(0, 100)

		require.InDelta(t, 0.3, policy.evaluate(3, 10), 0.0001)
	})
}

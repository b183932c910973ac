package agent

import (
	"maps"
	"math"
	"slices"

	"golang.org/x/exp/rand"

	"treesearch/game"
	"treesearch/searcher"
)

// sampleAction draws a legal action in proportion to its selection count
// raised to 1/temperature. It returns nil when no legal action was selected.
func sampleAction(node *searcher.TreeNode, actorID int, legal map[int]game.Action, temperature float64, rng *rand.Rand) game.Action {
	policy := make(map[int]float64, len(legal))
	for id := range legal {
		if stats, ok := node.Stats(actorID, id); ok && stats.NumSelected > 0 {
			policy[id] = float64(stats.NumSelected)
		}
	}
	if len(policy) == 0 {
		return nil
	}
	return legal[sample(adjustTemperature(policy, temperature), rng)]
}

// adjustTemperature raises every count to 1/temperature and rescales the
// results to sum to one.
func adjustTemperature(counts map[int]float64, temperature float64) map[int]float64 {
	weights := make(map[int]float64, len(counts))
	var total float64
	for id, n := range counts {
		weights[id] = math.Pow(n, 1/temperature)
		total += weights[id]
	}
	for id, w := range weights {
		weights[id] = w / total
	}
	return weights
}

func sample(policy map[int]float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	last := -1
	for _, id := range slices.Sorted(maps.Keys(policy)) {
		last = id
		cumulative += policy[id]
		if sampled < cumulative {
			return id
		}
	}
	return last // Fallback in case of rounding errors
}

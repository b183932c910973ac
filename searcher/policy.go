package searcher

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"golang.org/x/exp/rand"

	"treesearch/game"
)

// DefaultExploration is the UCT exploration coefficient C.
const DefaultExploration = 1.0

var ErrNoLegalActions = errors.New("no legal actions to choose from")

// TreePolicy chooses an actor's action while the search is inside the tree.
type TreePolicy interface {
	Select(node *TreeNode, state game.State, actorID int) (game.Action, error)
}

// DefaultPolicy chooses an actor's action below the tree, during simulation.
type DefaultPolicy interface {
	Select(state game.State, actorID int) (game.Action, error)
}

// UCT is the upper confidence bound tree policy. Every legal action is tried
// once before any statistics are compared.
type UCT struct {
	exploration float64
	rng         *rand.Rand
}

func NewUCT(exploration float64, rng *rand.Rand) *UCT {
	return &UCT{exploration: exploration, rng: rng}
}

func (u *UCT) Select(node *TreeNode, state game.State, actorID int) (game.Action, error) {
	legal := state.LegalActions(actorID)
	if len(legal) == 0 {
		return nil, fmt.Errorf("actor %d: %w", actorID, ErrNoLegalActions)
	}
	ids := slices.Sorted(maps.Keys(legal))

	actions := node.ActorActionsQualities[actorID]
	for _, id := range ids {
		if _, ok := actions[id]; !ok {
			return legal[id], nil
		}
	}

	maxScore := math.Inf(-1)
	maxIDs := make([]int, 0, 1)
	for _, id := range ids {
		stats := actions[id]
		score := u.score(stats.Quality, node.NumVisited, stats.NumSelected)
		switch {
		case score > maxScore:
			maxScore = score
			maxIDs = append(maxIDs[:0], id)
		case score == maxScore:
			maxIDs = append(maxIDs, id)
		}
	}
	return legal[maxIDs[u.rng.Intn(len(maxIDs))]], nil
}

// score is Q + C*sqrt(ln(N)/n), falling back to Q when either count is zero.
func (u *UCT) score(quality float64, parentVisits, visits int) float64 {
	if parentVisits == 0 || visits == 0 {
		return quality
	}
	return quality + u.exploration*math.Sqrt(math.Log(float64(parentVisits))/float64(visits))
}

// RandomPolicy picks uniformly among the legal actions.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

func (r *RandomPolicy) Select(state game.State, actorID int) (game.Action, error) {
	action, err := RandomAction(state.LegalActions(actorID), r.rng)
	if err != nil {
		return nil, fmt.Errorf("actor %d: %w", actorID, err)
	}
	return action, nil
}

// RandomAction draws one action uniformly. Keys are sorted first so a seeded
// source always yields the same choice.
func RandomAction(actions map[int]game.Action, rng *rand.Rand) (game.Action, error) {
	if len(actions) == 0 {
		return nil, ErrNoLegalActions
	}
	ids := slices.Sorted(maps.Keys(actions))
	return actions[ids[rng.Intn(len(ids))]], nil
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

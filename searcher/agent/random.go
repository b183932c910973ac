package agent

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"treesearch/game"
	"treesearch/searcher"
)

// Random picks uniformly among its legal actions.
type Random struct {
	actorID int
	rng     *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = searcher.NewRand(uint64(time.Now().UnixNano()))
	}
	return &Random{rng: rng}
}

func (r *Random) MatchStarted(actorID int, problem game.Problem) error {
	r.actorID = actorID
	return nil
}

func (r *Random) SelectAction(state game.State) (game.Action, error) {
	action, err := searcher.RandomAction(state.LegalActions(r.actorID), r.rng)
	if err != nil {
		return nil, fmt.Errorf("actor %d: %w", r.actorID, err)
	}
	return action, nil
}

func (r *Random) Transitioned(set game.ActionSet, state game.State) {}
func (r *Random) MatchFinished(payoffs map[int]float64)             {}

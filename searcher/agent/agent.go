package agent

import (
	"treesearch/experiments/metrics"
	"treesearch/game"
)

// Actor takes part in a match. The driver calls MatchStarted once, then
// SelectAction and Transitioned for every step, then MatchFinished.
type Actor interface {
	MatchStarted(actorID int, problem game.Problem) error
	// SelectAction returns the actor's action for the given state. The state
	// belongs to the caller and may be a clone.
	SelectAction(state game.State) (game.Action, error)
	// Transitioned reports the joint action played and the resulting state.
	Transitioned(set game.ActionSet, state game.State)
	MatchFinished(payoffs map[int]float64)
}

// Searcher is implemented by actors that search before they act.
type Searcher interface {
	// LastSearch returns the metrics of the most recent SelectAction.
	LastSearch() metrics.SearchMetric
}

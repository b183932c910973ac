package game

import "errors"

// ErrNotTerminal is returned when payoffs are requested from a state that has not ended.
var ErrNotTerminal = errors.New("state is not terminal")

// Action is a single actor's choice. The id is unique among the actor's legal
// actions in a given state; problems are free to embed any extra payload.
type Action interface {
	ActorID() int
	ID() int
}

// State is one position of a decision problem. States are mutable: Apply
// advances the state in place, so callers that explore hypothetical futures
// must work on a Clone.
type State interface {
	// LegalActions maps action id to action for the given actor. An actor with
	// no real choice gets exactly one pseudo action (see NoOp).
	LegalActions(actorID int) map[int]Action
	IsTerminal() bool
	// Payoffs returns the payoff per actor id, or ErrNotTerminal.
	Payoffs() (map[int]float64, error)
	Clone() State
	Apply(set ActionSet)
	CreateActionSet(actions map[int]Action) ActionSet
}

// Problem describes a decision problem: who acts and where it starts.
type Problem interface {
	ActorIDs() []int
	InitialState() State
	Name() string
}

package engine

import (
	"errors"

	"treesearch/experiments/metrics"
	"treesearch/game"
)

const MaxSteps = 10000

var (
	ErrStepLimit    = errors.New("match exceeded the step limit")
	ErrMissingActor = errors.New("no actor for actor id")
)

// Observer is notified synchronously at the same points as the actors.
type Observer interface {
	MatchStarted(problem game.Problem)
	Transitioned(step int, set game.ActionSet, state game.State)
	MatchFinished(payoffs map[int]float64)
}

type Result struct {
	Payoffs map[int]float64
	Steps   int
	Moves   []metrics.MoveMetric // Only for actors that search
	Game    metrics.GameMetric
}

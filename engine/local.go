package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"treesearch/experiments/metrics"
	"treesearch/game"
	"treesearch/searcher"
	"treesearch/searcher/agent"
)

type Option func(e *Engine)

// Engine plays one problem to the end with one actor per actor id.
type Engine struct {
	problem   game.Problem
	actors    map[int]agent.Actor
	maxSteps  int
	observers []Observer
	logger    zerolog.Logger
}

func WithMaxSteps(steps int) Option {
	return func(e *Engine) {
		if steps > 0 {
			e.maxSteps = steps
		}
	}
}

func WithObservers(observers ...Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, observers...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func New(problem game.Problem, actors map[int]agent.Actor, options ...Option) *Engine {
	e := &Engine{ // Default values
		problem:  problem,
		actors:   actors,
		maxSteps: MaxSteps,
		logger:   log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes the match until the state is terminal. ctx is checked
// between steps.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	ids := slices.Clone(e.problem.ActorIDs())
	slices.Sort(ids)
	for _, id := range ids {
		if _, ok := e.actors[id]; !ok {
			return Result{}, fmt.Errorf("%s: %w %d", e.problem.Name(), ErrMissingActor, id)
		}
	}

	startTime := time.Now()
	for _, id := range ids {
		if err := e.actors[id].MatchStarted(id, e.problem); err != nil {
			return Result{}, fmt.Errorf("starting actor %d: %w", id, err)
		}
	}
	for _, observer := range e.observers {
		observer.MatchStarted(e.problem)
	}
	e.logger.Info().Msgf("%s: match started with actors %v", e.problem.Name(), ids)

	state := e.problem.InitialState()
	var moves []metrics.MoveMetric
	step := 0
	for !state.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%s at step %d: %w", e.problem.Name(), step, err)
		}
		if step >= e.maxSteps {
			return Result{}, fmt.Errorf("%s after %d steps: %w", e.problem.Name(), step, ErrStepLimit)
		}

		actions := make(map[int]game.Action, len(ids))
		for _, id := range ids {
			action, err := e.selectAction(state, id)
			if err != nil {
				return Result{}, fmt.Errorf("step %d: %w", step, err)
			}
			actions[id] = action
			if s, ok := e.actors[id].(agent.Searcher); ok {
				moves = append(moves, metrics.MoveMetric{Step: step, Actor: id, SearchMetric: s.LastSearch()})
			}
		}

		set := state.CreateActionSet(actions)
		state.Apply(set)
		step++
		for _, id := range ids {
			e.actors[id].Transitioned(set, state.Clone())
		}
		for _, observer := range e.observers {
			observer.Transitioned(step, set, state)
		}
	}

	payoffs, err := state.Payoffs()
	if err != nil {
		return Result{}, fmt.Errorf("%s payoffs: %w", e.problem.Name(), err)
	}
	for _, id := range ids {
		e.actors[id].MatchFinished(payoffs)
	}
	for _, observer := range e.observers {
		observer.MatchFinished(payoffs)
	}

	endTime := time.Now()
	e.logger.Info().Msgf("%s: match finished after %d steps with payoffs %v", e.problem.Name(), step, payoffs)
	return Result{
		Payoffs: payoffs,
		Steps:   step,
		Moves:   moves,
		Game: metrics.GameMetric{
			Problem:    e.problem.Name(),
			Payoffs:    payoffs,
			StartTime:  startTime,
			EndTime:    endTime,
			Duration:   endTime.Sub(startTime),
			TotalMoves: step,
		},
	}, nil
}

// selectAction asks the actor on a clone of state. An illegal answer is
// replaced by the lowest-id legal action.
func (e *Engine) selectAction(state game.State, actorID int) (game.Action, error) {
	legal := state.LegalActions(actorID)
	if len(legal) == 0 {
		return nil, fmt.Errorf("actor %d: %w", actorID, searcher.ErrNoLegalActions)
	}

	candidate, err := e.actors[actorID].SelectAction(state.Clone())
	if err != nil {
		return nil, fmt.Errorf("actor %d: %w", actorID, err)
	}
	if candidate != nil && candidate.ActorID() == actorID {
		if _, ok := legal[candidate.ID()]; ok {
			return candidate, nil
		}
	}

	fallback := legal[slices.Min(slices.Collect(maps.Keys(legal)))]
	e.logger.Warn().Msgf("actor %d chose illegal action %v, playing %v instead", actorID, candidate, fallback)
	return fallback, nil
}

package agent

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"treesearch/experiments/metrics"
	"treesearch/game"
	"treesearch/searcher"
)

type Option func(a *MCTS)

// MCTS is an actor backed by a search tree that lives for the whole match.
// After every transition the current node moves to the child of the joint
// action played, so later searches start from what was already learnt.
type MCTS struct {
	warmUp      searcher.Budget
	think       searcher.Budget
	exploration float64
	temperature float64
	rng         *rand.Rand
	metrics     metrics.Collector
	logger      zerolog.Logger
	custom      map[int]searcher.ActionSelector

	actorID   int
	processor *searcher.Processor
	selectors map[int]searcher.ActionSelector
	root      *searcher.TreeNode
	current   *searcher.TreeNode
	last      metrics.SearchMetric
}

// WithWarmUp searches from the initial state when the match starts.
func WithWarmUp(budget searcher.Budget) Option {
	return func(a *MCTS) {
		a.warmUp = budget
	}
}

func WithExploration(c float64) Option {
	return func(a *MCTS) {
		if c >= 0 {
			a.exploration = c
		}
	}
}

// WithTemperature samples the action in proportion to NumSelected^(1/t)
// instead of taking the best one. Used for self-play diversity.
func WithTemperature(t float64) Option {
	return func(a *MCTS) {
		if t > 0 {
			a.temperature = t
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(a *MCTS) {
		if rng != nil {
			a.rng = rng
		}
	}
}

func WithMetrics() Option {
	return func(a *MCTS) {
		a.metrics = metrics.NewCollector()
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *MCTS) {
		a.logger = logger
	}
}

// WithSelectors overrides the per-actor policies used inside the search.
func WithSelectors(selectors map[int]searcher.ActionSelector) Option {
	return func(a *MCTS) {
		a.custom = selectors
	}
}

// NewMCTS returns an actor that spends think on every decision.
func NewMCTS(think searcher.Budget, options ...Option) *MCTS {
	if think == nil {
		panic("Must specify a thinking budget")
	}
	a := &MCTS{ // Default values
		think:       think,
		exploration: searcher.DefaultExploration,
		rng:         searcher.NewRand(uint64(time.Now().UnixNano())),
		metrics:     metrics.NewDummyCollector(),
		logger:      log.Logger,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *MCTS) MatchStarted(actorID int, problem game.Problem) error {
	a.actorID = actorID
	a.processor = searcher.NewProcessor(problem,
		searcher.WithRand(a.rng),
		searcher.WithExploration(a.exploration),
		searcher.WithMetrics(a.metrics),
		searcher.WithLogger(a.logger),
	)
	a.selectors = a.processor.DefaultSelectors()
	for id, selector := range a.custom {
		defaults := a.selectors[id]
		if selector.TreePolicy == nil {
			selector.TreePolicy = defaults.TreePolicy
		}
		if selector.DefaultPolicy == nil {
			selector.DefaultPolicy = defaults.DefaultPolicy
		}
		a.selectors[id] = selector
	}

	state := problem.InitialState()
	a.root = searcher.NewTreeNode(state.IsTerminal())
	a.current = a.root
	a.last = metrics.SearchMetric{}

	if a.warmUp == nil {
		return nil
	}
	a.metrics.Start()
	err := a.processor.Run(a.root, state, a.warmUp, a.selectors)
	warmUp := a.metrics.Complete()
	if err != nil {
		return fmt.Errorf("warm-up search for actor %d: %w", actorID, err)
	}
	a.logger.Debug().Msgf("actor %d warmed up with %d episodes in %v", actorID, warmUp.Episodes, warmUp.Duration)
	return nil
}

func (a *MCTS) SelectAction(state game.State) (game.Action, error) {
	legal := state.LegalActions(a.actorID)
	if len(legal) == 0 {
		return nil, fmt.Errorf("actor %d: %w", a.actorID, searcher.ErrNoLegalActions)
	}
	// A forced move needs no search
	if len(legal) == 1 {
		a.last = metrics.SearchMetric{}
		for _, action := range legal {
			return action, nil
		}
	}

	a.metrics.Start()
	err := a.processor.Run(a.current, state, a.think, a.selectors)
	a.last = a.metrics.Complete()
	if err != nil {
		return nil, fmt.Errorf("search for actor %d: %w", a.actorID, err)
	}

	var action game.Action
	if a.temperature > 0 {
		action = sampleAction(a.current, a.actorID, legal, a.temperature, a.rng)
	} else {
		action = bestAction(a.current, a.actorID, legal)
	}
	if action == nil { // Nothing was learnt about this actor here
		a.logger.Warn().Msgf("actor %d has no statistics, falling back to the default policy", a.actorID)
		return a.selectors[a.actorID].DefaultPolicy.Select(state, a.actorID)
	}
	return action, nil
}

func (a *MCTS) Transitioned(set game.ActionSet, state game.State) {
	child, ok := a.current.Child(set.ID)
	if !ok {
		child = a.current.AddNode(set.ID, state.IsTerminal())
	}
	a.metrics.SetTreeReused(ok)
	a.current = child
}

func (a *MCTS) MatchFinished(payoffs map[int]float64) {
	a.logger.Debug().Msgf("actor %d finished with payoff %v, tree size %d", a.actorID, payoffs[a.actorID], a.root.Size())
}

func (a *MCTS) LastSearch() metrics.SearchMetric {
	return a.last
}

// Root is the tree of the current match.
func (a *MCTS) Root() *searcher.TreeNode {
	return a.root
}

// Current is the node of the latest state the actor was told about.
func (a *MCTS) Current() *searcher.TreeNode {
	return a.current
}

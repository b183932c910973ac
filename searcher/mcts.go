package searcher

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"treesearch/experiments/metrics"
	"treesearch/game"
)

type Option func(p *Processor)

// Processor runs MCTS iterations over a caller-owned tree. It keeps no
// per-iteration state, so one Processor may search different trees
// concurrently as long as each tree and selector set has a single user.
// The default selectors of concurrent searches share one generator whose
// draws are serialized.
type Processor struct {
	problem     game.Problem
	actorIDs    []int
	exploration float64
	rng         *rand.Rand
	logger      zerolog.Logger
	metrics     metrics.Collector
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(p *Processor) {
		if collector != nil {
			p.metrics = collector
		}
	}
}

// WithRand sets the source used by the default selectors.
func WithRand(rng *rand.Rand) Option {
	return func(p *Processor) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithExploration sets C of the default UCT tree policy.
func WithExploration(c float64) Option {
	return func(p *Processor) {
		if c >= 0 {
			p.exploration = c
		}
	}
}

func NewProcessor(problem game.Problem, options ...Option) *Processor {
	actorIDs := slices.Clone(problem.ActorIDs())
	slices.Sort(actorIDs)
	p := &Processor{ // Default values
		problem:     problem,
		actorIDs:    actorIDs,
		exploration: DefaultExploration,
		rng:         NewRand(uint64(time.Now().UnixNano())),
		logger:      log.Logger,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(p)
	}
	p.rng = rand.New(&syncSource{rng: p.rng})
	return p
}

// syncSource guards a generator that default selectors of several searches
// draw from.
type syncSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *syncSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}

func (s *syncSource) Seed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Seed(seed)
}

func (p *Processor) Problem() game.Problem {
	return p.problem
}

// DefaultSelectors returns UCT with the processor's exploration coefficient
// and uniform random rollouts for every actor.
func (p *Processor) DefaultSelectors() map[int]ActionSelector {
	selectors := make(map[int]ActionSelector, len(p.actorIDs))
	for _, id := range p.actorIDs {
		selectors[id] = p.complete(ActionSelector{})
	}
	return selectors
}

// complete fills the policies a selector leaves unset with the defaults.
func (p *Processor) complete(selector ActionSelector) ActionSelector {
	if selector.TreePolicy == nil {
		selector.TreePolicy = NewUCT(p.exploration, p.rng)
	}
	if selector.DefaultPolicy == nil {
		selector.DefaultPolicy = NewRandomPolicy(p.rng)
	}
	return selector
}

// Run spends the budget on iterations from root, whose position is state.
// state itself is never modified. A nil selector map, a missing actor in it
// or an unset policy falls back to the defaults.
func (p *Processor) Run(root *TreeNode, state game.State, budget Budget, selectors map[int]ActionSelector) error {
	selectors = p.withDefaults(selectors)

	iterations := 0
	budget.Start()
	for budget.HasBudgetLeft() {
		if err := p.iterate(root, state.Clone(), selectors); err != nil {
			return fmt.Errorf("iteration %d: %w", iterations, err)
		}
		p.metrics.AddEpisode()
		iterations++
		budget.Next()
	}
	p.logger.Debug().Msgf("%s: ran %d iterations, root visited %d times", p.problem.Name(), iterations, root.NumVisited)
	return nil
}

// RunProblem searches from the problem's initial state.
func (p *Processor) RunProblem(root *TreeNode, budget Budget, selectors map[int]ActionSelector) error {
	return p.Run(root, p.problem.InitialState(), budget, selectors)
}

// RunIterations runs exactly n iterations.
func (p *Processor) RunIterations(root *TreeNode, state game.State, n int, selectors map[int]ActionSelector) error {
	return p.Run(root, state, NewIterationBudget(n), selectors)
}

func (p *Processor) withDefaults(selectors map[int]ActionSelector) map[int]ActionSelector {
	filled := make(map[int]ActionSelector, len(p.actorIDs))
	for _, id := range p.actorIDs {
		filled[id] = p.complete(selectors[id])
	}
	return filled
}

type step struct {
	node *TreeNode
	set  game.ActionSet
}

// iteration is the cursor of a single pass through the tree.
type iteration struct {
	node  *TreeNode
	state game.State
	path  []step // Edges taken, oldest first
}

func (p *Processor) iterate(root *TreeNode, state game.State, selectors map[int]ActionSelector) error {
	it := &iteration{node: root, state: state}

	candidate, err := p.selection(it, selectors)
	if err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	if candidate != nil {
		p.expansion(it, *candidate)
	}
	if err := p.simulation(it, selectors); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := p.backpropagation(it); err != nil {
		return fmt.Errorf("backpropagation: %w", err)
	}
	return nil
}

// selection descends through existing children using the tree policies. It
// returns the joint action to expand, or nil when a terminal state is reached.
func (p *Processor) selection(it *iteration, selectors map[int]ActionSelector) (*game.ActionSet, error) {
	for !it.state.IsTerminal() {
		actions := make(map[int]game.Action, len(p.actorIDs))
		for _, id := range p.actorIDs {
			action, err := selectors[id].TreePolicy.Select(it.node, it.state, id)
			if err != nil {
				return nil, err
			}
			actions[id] = action
		}
		set := it.state.CreateActionSet(actions)

		child, ok := it.node.Child(set.ID)
		if !ok {
			return &set, nil
		}
		it.path = append(it.path, step{node: it.node, set: set})
		it.state.Apply(set)
		it.node = child
	}
	return nil, nil
}

// expansion adds exactly one node, the child reached by set.
func (p *Processor) expansion(it *iteration, set game.ActionSet) {
	it.path = append(it.path, step{node: it.node, set: set})
	it.state.Apply(set)
	it.node = it.node.AddNode(set.ID, it.state.IsTerminal())
	p.metrics.AddExpansion()
}

// simulation plays the default policies to the end without touching the tree.
func (p *Processor) simulation(it *iteration, selectors map[int]ActionSelector) error {
	steps := 0
	for !it.state.IsTerminal() {
		actions := make(map[int]game.Action, len(p.actorIDs))
		for _, id := range p.actorIDs {
			action, err := selectors[id].DefaultPolicy.Select(it.state, id)
			if err != nil {
				return err
			}
			actions[id] = action
		}
		it.state.Apply(it.state.CreateActionSet(actions))
		steps++
	}
	p.metrics.AddSimulationSteps(steps)
	return nil
}

func (p *Processor) backpropagation(it *iteration) error {
	payoffs, err := it.state.Payoffs()
	if err != nil {
		return err
	}
	for i := len(it.path) - 1; i >= 0; i-- {
		it.path[i].node.Update(it.path[i].set, payoffs)
	}
	return nil
}

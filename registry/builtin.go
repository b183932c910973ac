package registry

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"treesearch/game"
	"treesearch/game/pick"
	"treesearch/game/rps"
	"treesearch/game/tictactoe"
	"treesearch/searcher"
	"treesearch/searcher/agent"
)

const (
	DefaultIterations = 1000
	DefaultDuration   = 100 * time.Millisecond
)

// Catalog holds the registries the CLI builds components from.
type Catalog struct {
	Problems *Registry[game.Problem]
	Budgets  *Registry[searcher.Budget]
	Actors   *Registry[agent.Actor]
}

// Builtin returns a catalog of every component shipped with the module.
func Builtin() *Catalog {
	c := &Catalog{
		Problems: New[game.Problem]("problem"),
		Budgets:  New[searcher.Budget]("budget"),
		Actors:   New[agent.Actor]("actor"),
	}

	c.Problems.Register("pick", newPick)
	c.Problems.Register("tictactoe", func(Params) (game.Problem, error) { return tictactoe.New(), nil })
	c.Problems.Register("rps", newRPS)

	c.Budgets.Register("iterations", newIterationBudget)
	c.Budgets.Register("time", newTimeBudget)

	c.Actors.Register("mcts", c.newMCTS)
	c.Actors.Register("random", newRandom)
	return c
}

// newPick reads values as a list; the i-th value is the payoff of action i+1.
func newPick(params Params) (game.Problem, error) {
	values, err := params.Floats("values", []float64{0.1, 1.0, 0.3})
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("values must not be empty")
	}
	rounds, err := params.Int("rounds", 1)
	if err != nil {
		return nil, err
	}
	table := make(map[int]float64, len(values))
	for i, v := range values {
		table[i+1] = v
	}
	return pick.New(table, rounds), nil
}

func newRPS(params Params) (game.Problem, error) {
	rounds, err := params.Int("rounds", 3)
	if err != nil {
		return nil, err
	}
	return rps.New(rounds), nil
}

func newIterationBudget(params Params) (searcher.Budget, error) {
	n, err := params.Int("iterations", DefaultIterations)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", n)
	}
	return searcher.NewIterationBudget(n), nil
}

func newTimeBudget(params Params) (searcher.Budget, error) {
	d, err := params.Duration("duration", DefaultDuration)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v", d)
	}
	return searcher.NewTimeBudget(d), nil
}

// rng returns a source for the seed parameter, or a time seeded one when
// the seed is absent or zero.
func rng(params Params) (*rand.Rand, error) {
	seed, err := params.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		return searcher.NewRand(uint64(time.Now().UnixNano())), nil
	}
	return searcher.NewRand(uint64(seed)), nil
}

// newMCTS builds the thinking budget from the "budget" kind and the same
// params, plus an optional iteration warm-up.
func (c *Catalog) newMCTS(params Params) (agent.Actor, error) {
	kind, err := params.String("budget", "iterations")
	if err != nil {
		return nil, err
	}
	think, err := c.Budgets.New(kind, params)
	if err != nil {
		return nil, err
	}
	warmUp, err := params.Int("warmup_iterations", 0)
	if err != nil {
		return nil, err
	}
	exploration, err := params.Float("exploration", searcher.DefaultExploration)
	if err != nil {
		return nil, err
	}
	temperature, err := params.Float("temperature", 0)
	if err != nil {
		return nil, err
	}
	source, err := rng(params)
	if err != nil {
		return nil, err
	}

	options := []agent.Option{
		agent.WithExploration(exploration),
		agent.WithTemperature(temperature),
		agent.WithRand(source),
		agent.WithMetrics(),
	}
	if warmUp > 0 {
		options = append(options, agent.WithWarmUp(searcher.NewIterationBudget(warmUp)))
	}
	return agent.NewMCTS(think, options...), nil
}

func newRandom(params Params) (agent.Actor, error) {
	source, err := rng(params)
	if err != nil {
		return nil, err
	}
	return agent.NewRandom(source), nil
}

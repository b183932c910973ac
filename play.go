package main

import (
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treesearch/config"
	"treesearch/engine"
	"treesearch/experiments"
	"treesearch/experiments/metrics"
	"treesearch/game"
	"treesearch/registry"
	"treesearch/searcher/agent"
)

func newProblem(c config.Config) (game.Problem, error) {
	return catalog.Problems.New(c.Problem.Kind, registry.Params(c.Problem.Params))
}

// newActor builds an actor, seeding it when the config has a seed and the
// actor does not set its own.
func newActor(spec config.Actor, seed uint64) (agent.Actor, error) {
	params := registry.Params(maps.Clone(spec.Params))
	if params == nil {
		params = registry.Params{}
	}
	if _, ok := params["seed"]; !ok && seed != 0 {
		params["seed"] = int(seed)
	}
	return catalog.Actors.New(spec.Kind, params)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	problem, err := newProblem(cfg)
	if err != nil {
		return err
	}
	ids := slices.Sorted(slices.Values(problem.ActorIDs()))
	if len(cfg.Actors) < len(ids) {
		return fmt.Errorf("%s needs %d actors, %d configured", problem.Name(), len(ids), len(cfg.Actors))
	}

	actors := make(map[int]agent.Actor, len(ids))
	for seat, id := range ids {
		var seed uint64
		if cfg.Seed != 0 {
			seed = cfg.Seed + uint64(seat)
		}
		actor, err := newActor(cfg.Actors[seat], seed)
		if err != nil {
			return err
		}
		actors[id] = actor
		log.Info().Msgf("actor %d is %s (%s)", id, cfg.Actors[seat].Name, cfg.Actors[seat].Kind)
	}

	result, err := engine.New(problem, actors,
		engine.WithMaxSteps(cfg.MaxSteps),
		engine.WithObservers(engine.NewLogObserver(log.Logger)),
	).Run(ctx)
	if err != nil {
		return err
	}

	for seat, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (actor %d): %g\n", cfg.Actors[seat].Name, id, result.Payoffs[id])
	}
	return nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	problem, err := newProblem(cfg)
	if err != nil {
		return err
	}

	agents := make(map[string]experiments.Agent, len(cfg.Actors))
	for _, spec := range cfg.Actors {
		agents[spec.Name] = experiments.Agent{
			AgentConfig: metrics.AgentConfig{Name: spec.Name, Kind: spec.Kind, Params: spec.Params},
			New: func(seed uint64) (agent.Actor, error) {
				return newActor(spec, seed)
			},
		}
	}

	report, err := experiments.Run(ctx, experiments.Config{
		Name:     cfg.Experiment.Name,
		Problem:  problem,
		Games:    cfg.Experiment.Games,
		Workers:  cfg.Experiment.Workers,
		Output:   cfg.Experiment.Output,
		MatchUps: cfg.Experiment.MatchUps,
		MaxSteps: cfg.MaxSteps,
		Seed:     cfg.Seed,
	}, agents)
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(report.Summary)) {
		s := report.Summary[name]
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s seats %4d  mean payoff %.3f\n", name, s.Seats, s.MeanPayoff)
	}
	if report.Dir != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "records written to %s\n", report.Dir)
	}
	return nil
}

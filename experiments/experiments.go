package experiments

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"treesearch/engine"
	"treesearch/experiments/metrics"
	"treesearch/game"
	"treesearch/searcher/agent"
)

var ErrMatchUp = errors.New("invalid match up")

// Agent is a named actor configuration. New is called once per game and seat
// so every game gets fresh actors; seed is 0 when no seed was configured.
type Agent struct {
	metrics.AgentConfig
	New func(seed uint64) (agent.Actor, error)
}

type Config struct {
	Name string
	// Problem is shared by concurrent games, so InitialState must be safe to
	// call from several goroutines.
	Problem  game.Problem
	Games    int        // Per match up
	Workers  int        // Games played concurrently
	Output   string     // Records go to Output/Name/<run id>; empty skips writing
	MatchUps [][]string // Agent names, one per seat
	MaxSteps int
	Seed     uint64
}

type Summary struct {
	Seats      int // Seats taken over all games
	MeanPayoff float64
}

type Report struct {
	ID      string
	Dir     string // Empty when nothing was written
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
	Summary map[string]Summary // Keyed by agent name
}

type plannedGame struct {
	index   int
	matchUp int
	seats   []string
}

type playedGame struct {
	record metrics.GameRecord
	moves  []metrics.MoveRecord
}

// Run plays every match up cfg.Games times. The seats rotate from game to
// game so no agent always moves first.
func Run(ctx context.Context, cfg Config, agents map[string]Agent) (Report, error) {
	plan, err := planGames(cfg, agents)
	if err != nil {
		return Report{}, err
	}

	runID := uuid.NewString()
	log.Info().Msgf("starting %s experiment %s with %d games...", cfg.Name, runID, len(plan))

	played := make([]playedGame, len(plan))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, p := range plan {
		g.Go(func() error {
			result, err := runGame(ctx, cfg, agents, p)
			if err != nil {
				return fmt.Errorf("game %d of match up %d: %w", p.index, p.matchUp, err)
			}
			played[p.index] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	log.Info().Msgf("completed %s experiment %s", cfg.Name, runID)

	report := Report{ID: runID, Summary: make(map[string]Summary)}
	for _, pg := range played {
		report.Games = append(report.Games, pg.record)
		report.Moves = append(report.Moves, pg.moves...)
	}
	summarize(&report)

	if cfg.Output != "" {
		report.Dir = filepath.Join(cfg.Output, cfg.Name, runID)
		if err := write(report, agents); err != nil {
			return report, err
		}
	}
	return report, nil
}

func planGames(cfg Config, agents map[string]Agent) ([]plannedGame, error) {
	seats := len(cfg.Problem.ActorIDs())
	var plan []plannedGame
	for mi, matchUp := range cfg.MatchUps {
		if len(matchUp) != seats {
			return nil, fmt.Errorf("%w: match up %d has %d agents for %d actors", ErrMatchUp, mi, len(matchUp), seats)
		}
		for _, name := range matchUp {
			if _, ok := agents[name]; !ok {
				return nil, fmt.Errorf("%w: match up %d names unknown agent %q", ErrMatchUp, mi, name)
			}
		}
		for i := range cfg.Games {
			// Rotate the seats by one every game
			shift := i % seats
			rotated := append(slices.Clone(matchUp[shift:]), matchUp[:shift]...)
			plan = append(plan, plannedGame{index: len(plan), matchUp: mi, seats: rotated})
		}
	}
	return plan, nil
}

func runGame(ctx context.Context, cfg Config, agents map[string]Agent, p plannedGame) (playedGame, error) {
	ids := slices.Clone(cfg.Problem.ActorIDs())
	slices.Sort(ids)

	gameID := uuid.NewString()
	actors := make(map[int]agent.Actor, len(ids))
	names := make(map[int]string, len(ids))
	for seat, name := range p.seats {
		var seed uint64
		if cfg.Seed != 0 {
			seed = cfg.Seed + uint64(p.index*len(ids)+seat)
		}
		actor, err := agents[name].New(seed)
		if err != nil {
			return playedGame{}, fmt.Errorf("creating agent %q: %w", name, err)
		}
		actors[ids[seat]] = actor
		names[ids[seat]] = name
	}

	logger := log.With().Str("game", gameID).Logger()
	result, err := engine.New(cfg.Problem, actors,
		engine.WithMaxSteps(cfg.MaxSteps),
		engine.WithLogger(logger),
	).Run(ctx)
	if err != nil {
		return playedGame{}, err
	}

	pg := playedGame{
		record: metrics.GameRecord{
			ID:         gameID,
			MatchUp:    p.matchUp,
			Seats:      p.seats,
			GameMetric: result.Game,
		},
	}
	for _, move := range result.Moves {
		pg.moves = append(pg.moves, metrics.MoveRecord{
			Game:       gameID,
			Agent:      names[move.Actor],
			MoveMetric: move,
		})
	}
	return pg, nil
}

func summarize(report *Report) {
	totals := make(map[string]float64)
	for _, record := range report.Games {
		ids := slices.Sorted(maps.Keys(record.Payoffs))
		for seat, name := range record.Seats {
			if seat >= len(ids) {
				break
			}
			s := report.Summary[name]
			s.Seats++
			report.Summary[name] = s
			totals[name] += record.Payoffs[ids[seat]]
		}
	}
	for name, s := range report.Summary {
		s.MeanPayoff = totals[name] / float64(s.Seats)
		report.Summary[name] = s
	}
}

func write(report Report, agents map[string]Agent) error {
	writer, err := metrics.NewWriter(report.Dir)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	configs := make([]metrics.AgentConfig, 0, len(agents))
	for _, name := range slices.Sorted(maps.Keys(agents)) {
		configs = append(configs, agents[name].AgentConfig)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(report.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(report.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return nil
}

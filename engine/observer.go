package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"treesearch/game"
)

// LogObserver writes every transition to a logger, including the state when
// it can print itself.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) MatchStarted(problem game.Problem) {
	o.logger.Info().Str("problem", problem.Name()).Msg("match started")
}

func (o *LogObserver) Transitioned(step int, set game.ActionSet, state game.State) {
	event := o.logger.Info().Int("step", step).Stringer("actions", set)
	if s, ok := state.(fmt.Stringer); ok {
		event = event.Str("state", "\n"+s.String())
	}
	event.Msg("transition")
}

func (o *LogObserver) MatchFinished(payoffs map[int]float64) {
	o.logger.Info().Msgf("match finished with payoffs %v", payoffs)
}

// Package pick is the smallest decision problem: one actor picks a value,
// possibly over several rounds, and is paid the mean of what it picked.
package pick

import (
	"fmt"
	"maps"
	"slices"

	"treesearch/game"
)

const Actor = 0

type Problem struct {
	values map[int]float64 // Action id -> payoff
	rounds int
	radix  int
}

// New panics on an empty value table or negative action ids, since the
// problem could not be played at all.
func New(values map[int]float64, rounds int) *Problem {
	if len(values) == 0 {
		panic("pick problem needs at least one value")
	}
	if rounds < 1 {
		rounds = 1
	}
	ids := slices.Sorted(maps.Keys(values))
	if ids[0] < 0 {
		panic(fmt.Sprintf("negative action id %d", ids[0]))
	}
	return &Problem{values: maps.Clone(values), rounds: rounds, radix: ids[len(ids)-1] + 1}
}

func (p *Problem) ActorIDs() []int { return []int{Actor} }
func (p *Problem) Name() string    { return "pick" }

func (p *Problem) InitialState() game.State {
	return &State{problem: p}
}

type State struct {
	problem *Problem
	picks   []int
}

func (s *State) LegalActions(actorID int) map[int]game.Action {
	if actorID != Actor || s.IsTerminal() {
		return map[int]game.Action{}
	}
	actions := make(map[int]game.Action, len(s.problem.values))
	for id := range s.problem.values {
		actions[id] = game.BasicAction{Actor: Actor, Id: id}
	}
	return actions
}

func (s *State) IsTerminal() bool {
	return len(s.picks) >= s.problem.rounds
}

func (s *State) Payoffs() (map[int]float64, error) {
	if !s.IsTerminal() {
		return nil, game.ErrNotTerminal
	}
	total := 0.0
	for _, id := range s.picks {
		total += s.problem.values[id]
	}
	return map[int]float64{Actor: total / float64(len(s.picks))}, nil
}

func (s *State) Clone() game.State {
	return &State{problem: s.problem, picks: slices.Clone(s.picks)}
}

func (s *State) Apply(set game.ActionSet) {
	action, ok := set.Action(Actor)
	if !ok {
		panic(fmt.Sprintf("action set %s has no action for actor %d", set, Actor))
	}
	s.picks = append(s.picks, action.ID())
}

func (s *State) CreateActionSet(actions map[int]game.Action) game.ActionSet {
	return game.EncodeActionSet(actions, s.problem.radix)
}

// Picks returns the values picked so far, in order.
func (s *State) Picks() []int {
	return slices.Clone(s.picks)
}

func (s *State) String() string {
	return fmt.Sprintf("picks %v of %d rounds", s.picks, s.problem.rounds)
}

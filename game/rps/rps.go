// Package rps is rock paper scissors played simultaneously over a fixed
// number of rounds.
package rps

import (
	"fmt"
	"slices"

	"treesearch/game"
)

const (
	Rock = iota + 1
	Paper
	Scissors

	radix = Scissors + 1
)

var names = map[int]string{Rock: "rock", Paper: "paper", Scissors: "scissors"}

type Problem struct {
	rounds int
}

func New(rounds int) *Problem {
	if rounds < 1 {
		rounds = 1
	}
	return &Problem{rounds: rounds}
}

func (p *Problem) ActorIDs() []int { return []int{0, 1} }
func (p *Problem) Name() string    { return "rps" }

func (p *Problem) InitialState() game.State {
	return &State{rounds: p.rounds}
}

type State struct {
	rounds int
	scores [2]float64
	played [][2]int
}

// beats reports whether a wins over b.
func beats(a, b int) bool {
	return (a == Rock && b == Scissors) || (a == Paper && b == Rock) || (a == Scissors && b == Paper)
}

func (s *State) LegalActions(actorID int) map[int]game.Action {
	if s.IsTerminal() || actorID < 0 || actorID > 1 {
		return map[int]game.Action{}
	}
	return map[int]game.Action{
		Rock:     game.BasicAction{Actor: actorID, Id: Rock},
		Paper:    game.BasicAction{Actor: actorID, Id: Paper},
		Scissors: game.BasicAction{Actor: actorID, Id: Scissors},
	}
}

func (s *State) IsTerminal() bool {
	return len(s.played) >= s.rounds
}

// Payoffs is each actor's mean round score: 1 for a win, 0.5 for a draw.
func (s *State) Payoffs() (map[int]float64, error) {
	if !s.IsTerminal() {
		return nil, game.ErrNotTerminal
	}
	n := float64(len(s.played))
	return map[int]float64{0: s.scores[0] / n, 1: s.scores[1] / n}, nil
}

func (s *State) Clone() game.State {
	return &State{rounds: s.rounds, scores: s.scores, played: slices.Clone(s.played)}
}

func (s *State) Apply(set game.ActionSet) {
	var round [2]int
	for actor := range round {
		action, ok := set.Action(actor)
		if !ok {
			panic(fmt.Sprintf("action set %s has no action for actor %d", set, actor))
		}
		round[actor] = action.ID()
	}
	switch {
	case beats(round[0], round[1]):
		s.scores[0]++
	case beats(round[1], round[0]):
		s.scores[1]++
	default:
		s.scores[0] += 0.5
		s.scores[1] += 0.5
	}
	s.played = append(s.played, round)
}

func (s *State) CreateActionSet(actions map[int]game.Action) game.ActionSet {
	return game.EncodeActionSet(actions, radix)
}

func (s *State) String() string {
	return fmt.Sprintf("round %d/%d, score %.1f-%.1f", len(s.played), s.rounds, s.scores[0], s.scores[1])
}

func Name(actionID int) string {
	return names[actionID]
}

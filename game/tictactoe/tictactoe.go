// Package tictactoe is a sequential two-actor game. The actor not on turn
// plays the no-op pseudo action.
package tictactoe

import (
	"fmt"
	"strings"

	"treesearch/game"
)

const (
	X = 0 // Moves first
	O = 1

	cells = 9
	radix = cells + 1 // Cell c is action id c+1, 0 is the no-op

	Win  = 1.0
	Draw = 0.5
	Loss = 0.0
)

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type Problem struct{}

func New() *Problem { return &Problem{} }

func (p *Problem) ActorIDs() []int { return []int{X, O} }
func (p *Problem) Name() string    { return "tictactoe" }

func (p *Problem) InitialState() game.State {
	s := &State{turn: X}
	for i := range s.board {
		s.board[i] = empty
	}
	return s
}

const empty = -1

type State struct {
	board [cells]int // Actor id or empty
	turn  int
	moves int
}

// CellAction is the action of marking a cell, 0 to 8 row by row.
func CellAction(actorID, cell int) game.Action {
	return game.BasicAction{Actor: actorID, Id: cell + 1}
}

func (s *State) Turn() int {
	return s.turn
}

func (s *State) LegalActions(actorID int) map[int]game.Action {
	if s.IsTerminal() {
		return map[int]game.Action{}
	}
	if actorID != s.turn {
		return game.NoOpOnly(actorID)
	}
	actions := make(map[int]game.Action)
	for cell, owner := range s.board {
		if owner == empty {
			a := CellAction(actorID, cell)
			actions[a.ID()] = a
		}
	}
	return actions
}

func (s *State) winner() (int, bool) {
	for _, line := range lines {
		owner := s.board[line[0]]
		if owner != empty && owner == s.board[line[1]] && owner == s.board[line[2]] {
			return owner, true
		}
	}
	return empty, false
}

func (s *State) IsTerminal() bool {
	_, won := s.winner()
	return won || s.moves == cells
}

func (s *State) Payoffs() (map[int]float64, error) {
	if !s.IsTerminal() {
		return nil, game.ErrNotTerminal
	}
	winner, won := s.winner()
	if !won {
		return map[int]float64{X: Draw, O: Draw}, nil
	}
	return map[int]float64{winner: Win, other(winner): Loss}, nil
}

func other(actorID int) int {
	if actorID == X {
		return O
	}
	return X
}

func (s *State) Clone() game.State {
	clone := *s
	return &clone
}

func (s *State) Apply(set game.ActionSet) {
	action, ok := set.Action(s.turn)
	if !ok || action.ID() == game.NoOpID {
		panic(fmt.Sprintf("action set %s has no move for actor %d", set, s.turn))
	}
	cell := action.ID() - 1
	if s.board[cell] != empty {
		panic(fmt.Sprintf("cell %d is already taken", cell))
	}
	s.board[cell] = s.turn
	s.turn = other(s.turn)
	s.moves++
}

func (s *State) CreateActionSet(actions map[int]game.Action) game.ActionSet {
	return game.EncodeActionSet(actions, radix)
}

func (s *State) String() string {
	var b strings.Builder
	for row := range 3 {
		if row > 0 {
			b.WriteString("\n")
		}
		for col := range 3 {
			switch s.board[row*3+col] {
			case X:
				b.WriteString("X")
			case O:
				b.WriteString("O")
			default:
				b.WriteString(".")
			}
		}
	}
	return b.String()
}

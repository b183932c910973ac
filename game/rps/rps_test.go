package rps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"treesearch/game"
)

func round(s game.State, a, b int) {
	s.Apply(s.CreateActionSet(map[int]game.Action{
		0: game.BasicAction{Actor: 0, Id: a},
		1: game.BasicAction{Actor: 1, Id: b},
	}))
}

func TestRPS(t *testing.T) {
	t.Run("scores rounds", func(t *testing.T) {
		s := New(3).InitialState()
		round(s, Rock, Scissors)
		round(s, Rock, Paper)
		require.False(t, s.IsTerminal(), "Two of three rounds played")
		round(s, Paper, Paper)

		payoffs, err := s.Payoffs()
		require.NoError(t, err, "Payoffs at the end should succeed")
		require.InDelta(t, 1.5/3, payoffs[0], 1e-9, "Actor 0 won one round and drew one")
		require.InDelta(t, 1.5/3, payoffs[1], 1e-9, "Actor 1 won one round and drew one")
	})

	t.Run("both actors act every round", func(t *testing.T) {
		s := New(1).InitialState()

		require.Len(t, s.LegalActions(0), 3, "Actor 0 should have three choices")
		require.Len(t, s.LegalActions(1), 3, "Actor 1 should have three choices")
	})

	t.Run("joint actions have distinct ids", func(t *testing.T) {
		s := New(1).InitialState()
		seen := make(map[int]bool)
		for _, a := range s.LegalActions(0) {
			for _, b := range s.LegalActions(1) {
				set := s.CreateActionSet(map[int]game.Action{0: a, 1: b})
				seen[set.ID] = true
			}
		}
		require.Len(t, seen, 9, "Nine joint actions should have nine ids")
	})

	t.Run("not terminal", func(t *testing.T) {
		_, err := New(1).InitialState().Payoffs()

		require.ErrorIs(t, err, game.ErrNotTerminal, "Payoffs before the end should fail")
	})
}

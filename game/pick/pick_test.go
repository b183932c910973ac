package pick

import (
	"testing"

	"github.com/stretchr/testify/require"

	"treesearch/game"
)

func play(t *testing.T, s game.State, ids ...int) {
	t.Helper()
	for _, id := range ids {
		a, ok := s.LegalActions(Actor)[id]
		require.True(t, ok, "Action %d should be legal", id)
		s.Apply(s.CreateActionSet(map[int]game.Action{Actor: a}))
	}
}

func TestPick(t *testing.T) {
	t.Run("single pick", func(t *testing.T) {
		s := New(map[int]float64{1: 1}, 1).InitialState()
		require.False(t, s.IsTerminal(), "Nothing picked yet")
		_, err := s.Payoffs()
		require.ErrorIs(t, err, game.ErrNotTerminal, "Payoffs before the end should fail")

		play(t, s, 1)

		require.True(t, s.IsTerminal(), "One pick should end the problem")
		payoffs, err := s.Payoffs()
		require.NoError(t, err, "Payoffs at the end should succeed")
		require.Equal(t, map[int]float64{Actor: 1}, payoffs, "Payoff should be the picked value")
		require.Empty(t, s.LegalActions(Actor), "Terminal state has no actions")
	})

	t.Run("mean over rounds", func(t *testing.T) {
		s := New(map[int]float64{1: 0, 2: 1}, 2).InitialState()

		play(t, s, 1, 2)

		payoffs, err := s.Payoffs()
		require.NoError(t, err, "Payoffs at the end should succeed")
		require.Equal(t, 0.5, payoffs[Actor], "Payoff should be the mean pick")
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := New(map[int]float64{1: 0, 2: 1}, 2).InitialState()
		clone := s.Clone()

		play(t, clone, 2)

		require.Empty(t, s.(*State).Picks(), "Original should not see the clone's picks")
		require.Equal(t, []int{2}, clone.(*State).Picks(), "Clone should record its pick")
	})

	t.Run("rejects empty values", func(t *testing.T) {
		require.Panics(t, func() { New(map[int]float64{}, 1) }, "Empty value table should panic")
	})
}

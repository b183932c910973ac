package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func spend(budget Budget) int {
	n := 0
	budget.Start()
	for budget.HasBudgetLeft() {
		n++
		budget.Next()
	}
	return n
}

func TestIterationBudget(t *testing.T) {
	t.Run("runs the given number of iterations", func(t *testing.T) {
		budget := NewIterationBudget(5)

		require.Equal(t, 5, spend(budget), "Loop should run exactly 5 times")
		require.Equal(t, 5, budget.Spent(), "Spent should count completed iterations")
	})

	t.Run("exhaustion is idempotent", func(t *testing.T) {
		budget := NewIterationBudget(1)
		spend(budget)

		for range 3 {
			require.False(t, budget.HasBudgetLeft(), "Exhausted budget should stay exhausted")
		}
	})

	t.Run("start resets", func(t *testing.T) {
		budget := NewIterationBudget(3)
		spend(budget)

		require.Equal(t, 3, spend(budget), "Start should reset the counter")
	})

	t.Run("zero iterations", func(t *testing.T) {
		require.Equal(t, 0, spend(NewIterationBudget(0)), "Zero budget should run nothing")
	})
}

func TestTimeBudget(t *testing.T) {
	t.Run("stops after duration", func(t *testing.T) {
		now := time.Unix(0, 0)
		budget := NewTimeBudget(time.Second)
		budget.now = func() time.Time { return now }

		budget.Start()
		require.True(t, budget.HasBudgetLeft(), "Budget should be left before the deadline")
		now = now.Add(999 * time.Millisecond)
		require.True(t, budget.HasBudgetLeft(), "Budget should be left just before the deadline")
		now = now.Add(time.Millisecond)
		require.False(t, budget.HasBudgetLeft(), "Budget should run out at the deadline")
	})

	t.Run("exhaustion is idempotent", func(t *testing.T) {
		now := time.Unix(0, 0)
		budget := NewTimeBudget(time.Second)
		budget.now = func() time.Time { return now }

		budget.Start()
		now = now.Add(2 * time.Second)
		require.False(t, budget.HasBudgetLeft(), "Budget should run out")
		now = time.Unix(0, 0)
		require.False(t, budget.HasBudgetLeft(), "Exhaustion should latch even if the clock goes back")

		budget.Start()
		require.True(t, budget.HasBudgetLeft(), "Start should reset the deadline")
	})
}

func TestContextBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	budget := WithContext(ctx, NewIterationBudget(100))

	budget.Start()
	require.True(t, budget.HasBudgetLeft(), "Budget should be left before cancellation")
	cancel()
	require.False(t, budget.HasBudgetLeft(), "Cancelled context should end the budget")
}

package searcher

import (
	"context"
	"time"
)

// Budget bounds how many iterations a search spends. A search runs
// Start(); for HasBudgetLeft() { iterate(); Next() }.
type Budget interface {
	Start()
	Next()
	HasBudgetLeft() bool
}

// IterationBudget allows a fixed number of iterations per Start.
type IterationBudget struct {
	limit int
	done  int
}

func NewIterationBudget(iterations int) *IterationBudget {
	return &IterationBudget{limit: iterations}
}

func (b *IterationBudget) Start()              { b.done = 0 }
func (b *IterationBudget) Next()               { b.done++ }
func (b *IterationBudget) HasBudgetLeft() bool { return b.done < b.limit }

// Spent is the number of iterations completed since Start.
func (b *IterationBudget) Spent() int { return b.done }

// TimeBudget allows iterations until a duration has elapsed since Start.
// Once exhausted it stays exhausted until the next Start.
type TimeBudget struct {
	duration  time.Duration
	now       func() time.Time
	deadline  time.Time
	exhausted bool
}

func NewTimeBudget(duration time.Duration) *TimeBudget {
	return &TimeBudget{duration: duration, now: time.Now}
}

func (b *TimeBudget) Start() {
	b.deadline = b.now().Add(b.duration)
	b.exhausted = false
}

func (b *TimeBudget) Next() {}

func (b *TimeBudget) HasBudgetLeft() bool {
	if b.exhausted {
		return false
	}
	if !b.now().Before(b.deadline) {
		b.exhausted = true
	}
	return !b.exhausted
}

// contextBudget stops a wrapped budget early once its context is done.
type contextBudget struct {
	ctx    context.Context
	budget Budget
}

// WithContext returns a budget that also runs out when ctx is cancelled. The
// check happens between iterations, never inside one.
func WithContext(ctx context.Context, budget Budget) Budget {
	return &contextBudget{ctx: ctx, budget: budget}
}

func (b *contextBudget) Start() { b.budget.Start() }
func (b *contextBudget) Next()  { b.budget.Next() }

func (b *contextBudget) HasBudgetLeft() bool {
	if b.ctx.Err() != nil {
		return false
	}
	return b.budget.HasBudgetLeft()
}

package searcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"treesearch/experiments/metrics"
	"treesearch/game"
)

// firstAction always picks the lowest legal id.
type firstAction struct{}

func (firstAction) Select(node *TreeNode, state game.State, actorID int) (game.Action, error) {
	legal := state.LegalActions(actorID)
	best := -1
	for id := range legal {
		if best < 0 || id < best {
			best = id
		}
	}
	return legal[best], nil
}

// firstRollout plays the lowest legal id below the tree.
type firstRollout struct{}

func (firstRollout) Select(state game.State, actorID int) (game.Action, error) {
	return firstAction{}.Select(nil, state, actorID)
}

func requireConservation(t *testing.T, node *TreeNode) {
	t.Helper()

	if node.IsTerminal {
		require.Empty(t, node.Children, "Terminal node should have no children")
		require.Empty(t, node.ActorActionsQualities, "Terminal node should have no stats")
		return
	}

	for actor, actions := range node.ActorActionsQualities {
		selected := 0
		for _, stats := range actions {
			selected += stats.NumSelected
		}
		require.Equal(t, node.NumVisited, selected, "Selections of actor %d should add up to the visits", actor)
	}

	allNonTerminal := true
	childVisits := 0
	for _, child := range node.Children {
		allNonTerminal = allNonTerminal && !child.IsTerminal
		childVisits += child.NumVisited
	}
	if allNonTerminal {
		// Each child was reached once without being visited: the iteration that created it
		require.Equal(t, node.NumVisited, len(node.Children)+childVisits, "Visits should flow to the children")
	}

	for _, child := range node.Children {
		requireConservation(t, child)
	}
}

func TestProcessorSingleMove(t *testing.T) {
	problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1}, depth: 1}
	root := NewTreeNode(false)

	err := NewProcessor(problem, WithRand(NewRand(1))).RunIterations(root, problem.InitialState(), 1, nil)

	require.NoError(t, err, "Search should succeed")
	require.Equal(t, 1, root.NumVisited, "Root should be visited once")
	require.Len(t, root.Children, 1, "One iteration should expand one child")
	for _, child := range root.Children {
		require.True(t, child.IsTerminal, "The only child ends the problem")
	}
	stats, ok := root.Stats(0, 1)
	require.True(t, ok, "The single action should have stats")
	require.Equal(t, 1, stats.NumSelected, "The single action should be selected once")
	require.Equal(t, 1.0, stats.Quality, "Quality should be the only payoff")
}

func TestProcessorResumable(t *testing.T) {
	problem := mockProblem{actors: []int{0, 1}, values: map[int]float64{0: 0.1, 1: 0.5, 2: 0.3}, depth: 3}

	resumed := NewTreeNode(false)
	p1 := NewProcessor(problem, WithRand(NewRand(11)))
	require.NoError(t, p1.RunIterations(resumed, problem.InitialState(), 1, nil), "First search should succeed")
	require.NoError(t, p1.RunIterations(resumed, problem.InitialState(), 999, nil), "Resumed search should succeed")

	single := NewTreeNode(false)
	p2 := NewProcessor(problem, WithRand(NewRand(11)))
	require.NoError(t, p2.RunIterations(single, problem.InitialState(), 1000, nil), "Search should succeed")

	require.Equal(t, 1000, resumed.NumVisited, "Resumed search should count every iteration")
	require.Equal(t, single, resumed, "Resuming should build the same tree as one long search")
}

func TestProcessorBestActionSurfaces(t *testing.T) {
	problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 0.1, 2: 1.0, 3: 0.3}, depth: 1}
	root := NewTreeNode(false)

	err := NewProcessor(problem, WithRand(NewRand(3))).RunProblem(root, NewIterationBudget(500), nil)
	require.NoError(t, err, "Search should succeed")

	dominant, _ := root.Stats(0, 2)
	for _, id := range []int{1, 3} {
		other, _ := root.Stats(0, id)
		require.Greater(t, dominant.Quality, other.Quality, "Dominant action should have the highest quality")
		require.Greater(t, dominant.NumSelected, other.NumSelected, "Dominant action should be selected the most")
	}
	best, ok := root.BestAction(0)
	require.True(t, ok, "Root should have a best action")
	require.Equal(t, 2, best, "Dominant action should be the best action")
}

func TestProcessorConservation(t *testing.T) {
	problem := mockProblem{actors: []int{0, 1}, values: map[int]float64{0: 0, 1: 1, 2: 0.5}, depth: 3}
	root := NewTreeNode(false)

	err := NewProcessor(problem, WithRand(NewRand(5))).RunIterations(root, problem.InitialState(), 300, nil)

	require.NoError(t, err, "Search should succeed")
	require.Equal(t, 300, root.NumVisited, "Every iteration should pass through the root")
	requireConservation(t, root)
}

func TestProcessorRun(t *testing.T) {
	t.Run("state is left untouched", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1, 2: 0}, depth: 2}
		state := problem.InitialState()

		err := NewProcessor(problem).RunIterations(NewTreeNode(false), state, 20, nil)

		require.NoError(t, err, "Search should succeed")
		require.False(t, state.IsTerminal(), "Root state should not advance")
		require.Empty(t, state.(*mockState).played, "Root state should not record moves")
	})

	t.Run("at most one expansion per iteration", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1, 2: 0}, depth: 4}
		root := NewTreeNode(false)

		err := NewProcessor(problem).RunIterations(root, problem.InitialState(), 7, nil)

		require.NoError(t, err, "Search should succeed")
		require.Equal(t, 8, root.Size(), "Seven iterations should add seven nodes")
	})

	t.Run("terminal root", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1}, depth: 0}
		root := NewTreeNode(true)

		err := NewProcessor(problem).RunIterations(root, problem.InitialState(), 5, nil)

		require.NoError(t, err, "Search from a terminal state should succeed")
		require.Equal(t, 0, root.NumVisited, "Terminal root takes no edges")
		require.Empty(t, root.Children, "Terminal root should not expand")
	})

	t.Run("custom selectors", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 0, 2: 1}, depth: 1}
		root := NewTreeNode(false)
		selectors := map[int]ActionSelector{
			0: NewActionSelector(NewRand(1), WithTreePolicy(firstAction{})),
		}

		err := NewProcessor(problem).RunIterations(root, problem.InitialState(), 10, selectors)

		require.NoError(t, err, "Search should succeed")
		require.Len(t, root.Children, 1, "Only the forced action should be expanded")
		stats, _ := root.Stats(0, 1)
		require.Equal(t, 10, stats.NumSelected, "Forced action should take every iteration")
	})

	t.Run("payoff errors abort the search", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1}, depth: 1, failPayoffs: true}

		err := NewProcessor(problem).RunIterations(NewTreeNode(false), problem.InitialState(), 3, nil)

		require.ErrorIs(t, err, errMockPayoffs, "Payoff error should be returned")
	})

	t.Run("cancelled context", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1}, depth: 1}
		root := NewTreeNode(false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewProcessor(problem).Run(root, problem.InitialState(), WithContext(ctx, NewIterationBudget(10)), nil)

		require.NoError(t, err, "Cancellation is not an error")
		require.Equal(t, 0, root.NumVisited, "No iteration should run")
	})

	t.Run("collects metrics", func(t *testing.T) {
		problem := mockProblem{actors: []int{0}, values: map[int]float64{1: 1, 2: 0}, depth: 3}
		collector := metrics.NewCollector()
		collector.Start()

		root := NewTreeNode(false)

		err := NewProcessor(problem, WithMetrics(collector)).RunIterations(root, problem.InitialState(), 10, nil)

		require.NoError(t, err, "Search should succeed")
		metric := collector.Complete()
		require.Equal(t, 10, metric.Episodes, "Every iteration should count")
		require.Equal(t, root.Size()-1, metric.Expansions, "Every new node should count as an expansion")
		require.Positive(t, metric.SimulationSteps, "Rollouts should take steps")
	})
}

func TestProcessorPartialSelectors(t *testing.T) {
	problem := mockProblem{actors: []int{0, 1}, values: map[int]float64{1: 0, 2: 1}, depth: 2}

	t.Run("tree policy only", func(t *testing.T) {
		root := NewTreeNode(false)
		selectors := map[int]ActionSelector{0: {TreePolicy: firstAction{}}}

		err := NewProcessor(problem, WithRand(NewRand(1))).RunIterations(root, problem.InitialState(), 20, selectors)

		require.NoError(t, err, "Missing default policy should fall back to random rollouts")
		stats, _ := root.Stats(0, 1)
		require.Equal(t, 20, stats.NumSelected, "Given tree policy should still be used")
	})

	t.Run("default policy only", func(t *testing.T) {
		root := NewTreeNode(false)
		selectors := map[int]ActionSelector{0: {DefaultPolicy: firstRollout{}}, 1: {}}

		err := NewProcessor(problem, WithRand(NewRand(1))).RunIterations(root, problem.InitialState(), 20, selectors)

		require.NoError(t, err, "Missing tree policy should fall back to UCT")
		require.Equal(t, 20, root.NumVisited, "Every iteration should run")
		requireConservation(t, root)
	})
}

func TestProcessorConcurrentTrees(t *testing.T) {
	problem := mockProblem{actors: []int{0, 1}, values: map[int]float64{0: 0.1, 1: 0.5, 2: 0.3}, depth: 3}
	processor := NewProcessor(problem, WithRand(NewRand(1)))
	roots := make([]*TreeNode, 4)

	var g errgroup.Group
	for i := range roots {
		roots[i] = NewTreeNode(false)
		g.Go(func() error {
			return processor.RunIterations(roots[i], problem.InitialState(), 2000, nil)
		})
	}

	require.NoError(t, g.Wait(), "Concurrent searches should succeed")
	for i, root := range roots {
		require.Equal(t, 2000, root.NumVisited, "Tree %d should count only its own iterations", i)
		requireConservation(t, root)
	}
}

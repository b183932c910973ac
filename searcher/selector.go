package searcher

import "golang.org/x/exp/rand"

// ActionSelector pairs the tree policy and default policy of one actor.
type ActionSelector struct {
	TreePolicy    TreePolicy
	DefaultPolicy DefaultPolicy
}

type SelectorOption func(s *ActionSelector)

func WithTreePolicy(policy TreePolicy) SelectorOption {
	return func(s *ActionSelector) {
		if policy != nil {
			s.TreePolicy = policy
		}
	}
}

func WithDefaultPolicy(policy DefaultPolicy) SelectorOption {
	return func(s *ActionSelector) {
		if policy != nil {
			s.DefaultPolicy = policy
		}
	}
}

// NewActionSelector defaults to UCT with the default exploration coefficient
// and a uniform random rollout.
func NewActionSelector(rng *rand.Rand, options ...SelectorOption) ActionSelector {
	s := ActionSelector{
		TreePolicy:    NewUCT(DefaultExploration, rng),
		DefaultPolicy: NewRandomPolicy(rng),
	}
	for _, option := range options {
		option(&s)
	}
	return s
}

// DefaultSelectors builds a default selector for every actor, all drawing from rng.
func DefaultSelectors(actorIDs []int, rng *rand.Rand) map[int]ActionSelector {
	selectors := make(map[int]ActionSelector, len(actorIDs))
	for _, id := range actorIDs {
		selectors[id] = NewActionSelector(rng)
	}
	return selectors
}

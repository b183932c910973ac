package searcher

import (
	"fmt"
	"maps"
	"slices"

	"treesearch/game"
)

// ActionStats is what a node knows about one actor's action.
type ActionStats struct {
	NumSelected int
	Quality     float64 // Running mean payoff of the actor when the action was selected here
}

// TreeNode accumulates search statistics for one position. Children are keyed
// by ActionSet id and created lazily, at most one per joint action.
type TreeNode struct {
	NumVisited            int
	Children              map[int]*TreeNode
	ActorActionsQualities map[int]map[int]*ActionStats // actor id -> action id -> stats
	IsTerminal            bool
}

func NewTreeNode(terminal bool) *TreeNode {
	return &TreeNode{
		Children:              make(map[int]*TreeNode),
		ActorActionsQualities: make(map[int]map[int]*ActionStats),
		IsTerminal:            terminal,
	}
}

// Child returns the child reached by the joint action with the given id.
func (n *TreeNode) Child(actionSetID int) (*TreeNode, bool) {
	child, ok := n.Children[actionSetID]
	return child, ok
}

// AddNode creates the child for a joint action. Expanding past a terminal node
// means the caller disagrees with the state about terminality, so it panics.
func (n *TreeNode) AddNode(actionSetID int, terminal bool) *TreeNode {
	if n.IsTerminal {
		panic(fmt.Sprintf("cannot expand terminal node with action set %d", actionSetID))
	}
	if child, ok := n.Children[actionSetID]; ok {
		return child
	}
	child := NewTreeNode(terminal)
	n.Children[actionSetID] = child
	return child
}

// Stats returns the statistics of an actor's action, if it was ever selected here.
func (n *TreeNode) Stats(actorID, actionID int) (ActionStats, bool) {
	stats, ok := n.ActorActionsQualities[actorID][actionID]
	if !ok {
		return ActionStats{}, false
	}
	return *stats, true
}

// Update records one iteration passing through the node with the given joint
// action and terminal payoffs.
func (n *TreeNode) Update(set game.ActionSet, payoffs map[int]float64) {
	n.NumVisited++
	for actorID, action := range set.Actions {
		actions, ok := n.ActorActionsQualities[actorID]
		if !ok {
			actions = make(map[int]*ActionStats)
			n.ActorActionsQualities[actorID] = actions
		}
		stats, ok := actions[action.ID()]
		if !ok {
			stats = &ActionStats{}
			actions[action.ID()] = stats
		}
		selected := float64(stats.NumSelected)
		stats.Quality = (selected*stats.Quality + payoffs[actorID]) / (selected + 1)
		stats.NumSelected++
	}
}

// BestAction returns the action id with the highest quality for the actor.
// Ties go to the most selected action, then to the lowest id.
func (n *TreeNode) BestAction(actorID int) (int, bool) {
	actions := n.ActorActionsQualities[actorID]
	if len(actions) == 0 {
		return 0, false
	}

	best := -1
	var bestStats *ActionStats
	for _, id := range slices.Sorted(maps.Keys(actions)) {
		stats := actions[id]
		if bestStats == nil ||
			stats.Quality > bestStats.Quality ||
			(stats.Quality == bestStats.Quality && stats.NumSelected > bestStats.NumSelected) {
			best = id
			bestStats = stats
		}
	}
	return best, true
}

// Size counts the nodes of the subtree rooted at n.
func (n *TreeNode) Size() int {
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// Depth is the length of the longest path from n to a leaf.
func (n *TreeNode) Depth() int {
	depth := 0
	for _, child := range n.Children {
		depth = max(depth, child.Depth()+1)
	}
	return depth
}

package agent

import (
	"treesearch/game"
	"treesearch/searcher"
)

// bestAction returns the legal action with the highest quality at node, or
// nil when the actor has no statistics there.
func bestAction(node *searcher.TreeNode, actorID int, legal map[int]game.Action) game.Action {
	id, ok := node.BestAction(actorID)
	if !ok {
		return nil
	}
	return legal[id]
}

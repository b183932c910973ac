package game

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ActionSet is the joint choice of one action per actor for a single
// transition. ID must be unique among all joint actions legal from the state
// that created it; it keys the children of a search tree node.
type ActionSet struct {
	ID      int
	Actions map[int]Action // Keyed by actor id
}

// Action returns the action chosen by the given actor.
func (s ActionSet) Action(actorID int) (Action, bool) {
	a, ok := s.Actions[actorID]
	return a, ok
}

// ActorIDs returns the actors taking part in the set, in ascending order.
func (s ActionSet) ActorIDs() []int {
	return slices.Sorted(maps.Keys(s.Actions))
}

func (s ActionSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d{", s.ID)
	for i, actorID := range s.ActorIDs() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%d", actorID, s.Actions[actorID].ID())
	}
	b.WriteString("}")
	return b.String()
}

// EncodeActionSet builds an ActionSet whose id is the mixed-radix encoding of
// the action ids over ascending actor ids: sum(id_i * radix^i). Every action id
// must lie in [0, radix).
func EncodeActionSet(actions map[int]Action, radix int) ActionSet {
	if radix < 1 {
		panic(fmt.Sprintf("invalid action set radix %d", radix))
	}
	id := 0
	weight := 1
	for _, actorID := range slices.Sorted(maps.Keys(actions)) {
		actionID := actions[actorID].ID()
		if actionID < 0 || actionID >= radix {
			panic(fmt.Sprintf("action id %d of actor %d outside radix %d", actionID, actorID, radix))
		}
		id += actionID * weight
		weight *= radix
	}
	return ActionSet{ID: id, Actions: maps.Clone(actions)}
}

package game

import "fmt"

// NoOpID is the action id of the pseudo action given to an actor that has no
// real choice in a state.
const NoOpID = 0

// BasicAction is an Action with no payload beyond its ids.
type BasicAction struct {
	Actor int
	Id    int
}

func (a BasicAction) ActorID() int { return a.Actor }
func (a BasicAction) ID() int      { return a.Id }

func (a BasicAction) String() string {
	return fmt.Sprintf("actor %d action %d", a.Actor, a.Id)
}

// NoOp returns the pseudo action for an actor that waits this turn.
func NoOp(actorID int) Action {
	return BasicAction{Actor: actorID, Id: NoOpID}
}

// NoOpOnly is the legal action mapping of an actor without a real choice.
func NoOpOnly(actorID int) map[int]Action {
	return map[int]Action{NoOpID: NoOp(actorID)}
}

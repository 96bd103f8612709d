package presence

// Verbs announced on room transitions.
const (
	VerbEntered  = "entered"
	VerbDeparted = "departed"
)

// roomTransition is the announcement implied by a room change. For a
// departure, Room names the room that was left, since that is the room
// whose view the change affects.
type roomTransition struct {
	Verb string
	Room string
}

// diffRoom computes the room transition from the previous room to the
// newly observed one. "" means "in no tracked room" on both sides.
//
// The feed conflates no-change and real-change observations, so transitions
// are derived by diffing rather than trusting the feed to label actions:
// a repeated observation must come out as no transition.
func diffRoom(prev, next string) (roomTransition, bool) {
	switch {
	case next == prev:
		return roomTransition{}, false
	case next != "":
		return roomTransition{Verb: VerbEntered, Room: next}, true
	case prev != "":
		return roomTransition{Verb: VerbDeparted, Room: prev}, true
	default:
		return roomTransition{}, false
	}
}

// diffHub reports whether the hub flag flipped and in which direction.
func diffHub(prev, next bool) (checkedIn bool, changed bool) {
	if prev == next {
		return false, false
	}
	return next, true
}

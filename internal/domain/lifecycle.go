package domain

// AnnouncementState is the lifecycle state of an announcement.
type AnnouncementState string

const (
	LookingForGroup AnnouncementState = "LOOKING_FOR_GROUP"
	EventStarted    AnnouncementState = "EVENT_STARTED"
	EventCancelled  AnnouncementState = "EVENT_CANCELLED"
)

func ParseAnnouncementState(s string) (AnnouncementState, bool) {
	switch AnnouncementState(s) {
	case LookingForGroup, EventStarted, EventCancelled:
		return AnnouncementState(s), true
	}
	return "", false
}

// Closed reports whether the state is terminal.
func (s AnnouncementState) Closed() bool {
	return s == EventStarted || s == EventCancelled
}

// Action is a lifecycle transition request.
type Action string

const (
	ActionStart  Action = "start"
	ActionCancel Action = "cancel"
)

// transitions is the full lifecycle table. Terminal states have no
// entries, so nothing can ever move out of them.
var transitions = map[AnnouncementState]map[Action]AnnouncementState{
	LookingForGroup: {
		ActionStart:  EventStarted,
		ActionCancel: EventCancelled,
	},
}

// NextState resolves a transition, or fails with a StateConflictError
// when the table has no edge for (from, action).
func NextState(from AnnouncementState, action Action) (AnnouncementState, error) {
	if next, ok := transitions[from][action]; ok {
		return next, nil
	}
	return from, StateConflictError{State: from, Action: action}
}

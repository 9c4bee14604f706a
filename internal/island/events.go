package island

// Event is a notification emitted by the Controller.
type Event int

const (
	EventShown Event = iota
	EventHidden
	EventMouseEntered
	EventMouseExited
	EventDetached
	EventAttached
	EventSheetPresented
	EventSheetDismissed
)

var eventNames = map[Event]string{
	EventShown:          "shown",
	EventHidden:         "hidden",
	EventMouseEntered:   "mouse_entered",
	EventMouseExited:    "mouse_exited",
	EventDetached:       "detached",
	EventAttached:       "attached",
	EventSheetPresented: "sheet_presented",
	EventSheetDismissed: "sheet_dismissed",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

// Observer receives controller events in the order they happen.
// Observers must not call back into the Controller synchronously.
type Observer interface {
	OnIslandEvent(e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e Event)

// OnIslandEvent calls f(e).
func (f ObserverFunc) OnIslandEvent(e Event) { f(e) }

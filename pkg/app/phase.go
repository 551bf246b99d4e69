package app

// Phase is the startup stage an application has reached. Phases only move
// forward; Exited is terminal.
type Phase int32

const (
	PhaseCreated Phase = iota
	PhaseStarting
	PhaseMetaCreated
	PhaseRunning
	PhaseExited
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseStarting:
		return "Starting"
	case PhaseMetaCreated:
		return "MetaCreated"
	case PhaseRunning:
		return "Running"
	case PhaseExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// Event is a lifecycle notification fired by Start and Exit.
type Event int

// Events in firing order.
const (
	EventStartupPluginsInitialized Event = iota
	EventMetaCreating
	EventMetaCreated
	EventRuntimeStarting
	EventStartupCompleted
	EventExit
)

// Events lists every event in firing order.
var Events = []Event{
	EventStartupPluginsInitialized,
	EventMetaCreating,
	EventMetaCreated,
	EventRuntimeStarting,
	EventStartupCompleted,
	EventExit,
}

func (e Event) String() string {
	switch e {
	case EventStartupPluginsInitialized:
		return "StartupPluginsInitialized"
	case EventMetaCreating:
		return "MetaCreating"
	case EventMetaCreated:
		return "MetaCreated"
	case EventRuntimeStarting:
		return "RuntimeStarting"
	case EventStartupCompleted:
		return "StartupCompleted"
	case EventExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

func (e Event) valid() bool {
	return e >= EventStartupPluginsInitialized && e <= EventExit
}

package monitor

// SessionState represents the lifecycle state of a monitoring session.
type SessionState string

const (
	// StateInitializing means interface discovery and baseline snapshots are in progress.
	StateInitializing SessionState = "initializing"
	// StateReady means the session is idle between ticks and accepts commands.
	StateReady SessionState = "ready"
	// StateTicking means a collect/derive/append cycle is executing.
	StateTicking SessionState = "ticking"
	// StateSwitching means an interface selection change is being applied.
	StateSwitching SessionState = "switching"
	// StateQuitting means shutdown was requested and the driver loop should exit.
	StateQuitting SessionState = "quitting"
	// StateStopped means the session has ended and releases no further samples.
	StateStopped SessionState = "stopped"
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	return string(s)
}

// CanTick returns true if a tick may start from this state.
func (s SessionState) CanTick() bool {
	return s == StateReady
}

// CanSwitch returns true if the interface selection may change in this state.
func (s SessionState) CanSwitch() bool {
	return s == StateReady
}

// IsShuttingDown returns true if the session is quitting or already stopped.
func (s SessionState) IsShuttingDown() bool {
	return s == StateQuitting || s == StateStopped
}

// IsTerminal returns true if the session has reached its final state.
func (s SessionState) IsTerminal() bool {
	return s == StateStopped
}

// validTransitions defines the allowed state transitions.
var validTransitions = map[SessionState][]SessionState{
	StateInitializing: {StateReady},
	StateReady:        {StateTicking, StateSwitching, StateQuitting},
	StateTicking:      {StateReady},    // Tick always returns to ready
	StateSwitching:    {StateReady},    // Selection change always returns to ready
	StateQuitting:     {StateStopped},  // Shutdown completes
	StateStopped:      {},              // Terminal state
}

// IsValidTransition checks if a state transition is allowed.
func IsValidTransition(from, to SessionState) bool {
	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}

// AllStates returns all possible session states.
func AllStates() []SessionState {
	return []SessionState{
		StateInitializing,
		StateReady,
		StateTicking,
		StateSwitching,
		StateQuitting,
		StateStopped,
	}
}

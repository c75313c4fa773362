package monitor

// Command is a request handled by the session between ticks.
type Command string

const (
	// CommandSelectPrevious moves the selection to the previous interface.
	CommandSelectPrevious Command = "select_previous"
	// CommandSelectNext moves the selection to the next interface.
	CommandSelectNext Command = "select_next"
	// CommandForceUpdate runs a collection cycle immediately.
	CommandForceUpdate Command = "force_update"
	// CommandResetHistory clears the selected interface's history window.
	CommandResetHistory Command = "reset_history"
	// CommandQuit requests session shutdown.
	CommandQuit Command = "quit"
)

// String returns the string representation of the command.
func (c Command) String() string {
	return string(c)
}

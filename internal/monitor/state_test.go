package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionState_String(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected string
	}{
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateTicking, "ticking"},
		{StateSwitching, "switching"},
		{StateQuitting, "quitting"},
		{StateStopped, "stopped"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestSessionState_CanTick(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected bool
	}{
		{StateInitializing, false},
		{StateReady, true},
		{StateTicking, false},
		{StateSwitching, false},
		{StateQuitting, false},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.CanTick())
		})
	}
}

func TestSessionState_CanSwitch(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected bool
	}{
		{StateInitializing, false},
		{StateReady, true},
		{StateTicking, false},
		{StateSwitching, false},
		{StateQuitting, false},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.CanSwitch())
		})
	}
}

func TestSessionState_IsShuttingDown(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected bool
	}{
		{StateInitializing, false},
		{StateReady, false},
		{StateTicking, false},
		{StateSwitching, false},
		{StateQuitting, true},
		{StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.IsShuttingDown())
		})
	}
}

func TestSessionState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected bool
	}{
		{StateInitializing, false},
		{StateReady, false},
		{StateTicking, false},
		{StateSwitching, false},
		{StateQuitting, false},
		{StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.IsTerminal())
		})
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
	}{
		{StateInitializing, StateReady},
		{StateReady, StateTicking},
		{StateReady, StateSwitching},
		{StateReady, StateQuitting},
		{StateTicking, StateReady},
		{StateSwitching, StateReady},
		{StateQuitting, StateStopped},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.True(t, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
	}{
		{StateInitializing, StateTicking},  // Must pass through ready first
		{StateInitializing, StateQuitting}, // Initialization cannot be interrupted
		{StateReady, StateReady},           // Self-transitions are not allowed
		{StateReady, StateStopped},         // Shutdown must go through quitting
		{StateTicking, StateSwitching},     // A tick must finish before switching
		{StateTicking, StateQuitting},      // Commands are not handled mid-tick
		{StateSwitching, StateTicking},     // A switch must finish before ticking
		{StateQuitting, StateReady},        // Quitting cannot be cancelled
		{StateStopped, StateReady},         // Terminal state has no exits
		{StateStopped, StateQuitting},      // Terminal state has no exits
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.False(t, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestAllStates(t *testing.T) {
	states := AllStates()

	assert.Len(t, states, 6)
	assert.Contains(t, states, StateInitializing)
	assert.Contains(t, states, StateReady)
	assert.Contains(t, states, StateTicking)
	assert.Contains(t, states, StateSwitching)
	assert.Contains(t, states, StateQuitting)
	assert.Contains(t, states, StateStopped)
}

func TestIsValidTransition_UnknownState(t *testing.T) {
	unknown := SessionState("unknown")

	assert.False(t, IsValidTransition(unknown, StateReady))
	assert.False(t, IsValidTransition(StateReady, unknown))
}

package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusIdle, StatusQueued, true},
		{StatusIdle, StatusRunning, false},
		{StatusIdle, StatusFinished, false},
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusStopped, true},
		{StatusQueued, StatusTerminated, true},
		{StatusQueued, StatusFinished, false},
		{StatusRunning, StatusFinished, true},
		{StatusRunning, StatusStopped, true},
		{StatusRunning, StatusTerminated, true},
		{StatusRunning, StatusError, true},
		{StatusRunning, StatusQueued, false},
		{StatusFinished, StatusRunning, false},
		{StatusFinished, StatusError, true},
		{StatusStopped, StatusError, true},
		{StatusTerminated, StatusError, true},
		{StatusError, StatusIdle, true},
		{StatusError, StatusQueued, true},
		{StatusError, StatusRunning, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestStatus_SelfTransitionAlwaysAllowed(t *testing.T) {
	for _, s := range []Status{
		StatusIdle, StatusQueued, StatusRunning,
		StatusFinished, StatusStopped, StatusTerminated, StatusError,
	} {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusIdle.IsTerminal())
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusFinished.IsTerminal())
	assert.True(t, StatusStopped.IsTerminal())
	assert.True(t, StatusTerminated.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := &InvalidTransitionError{From: StatusIdle, To: StatusFinished}
	assert.Contains(t, err.Error(), "Idle")
	assert.Contains(t, err.Error(), "Finished")
}

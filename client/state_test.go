package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	t.Parallel()
	type S = State
	cases := []struct {
		from   S
		ev     Event
		expect S
		ok     bool
	}{
		{StateStopped, EventStart, StateConnecting, true},
		{StateConnecting, EventConnected, StateConnected, true},
		{StateConnecting, EventLost, StateRetrying, true},
		{StateConnected, EventLost, StateRetrying, true},
		{StateRetrying, EventRetry, StateConnecting, true},

		{StateStopped, EventStop, StateStopped, true},
		{StateConnecting, EventStop, StateStopped, true},
		{StateConnected, EventStop, StateStopped, true},
		{StateRetrying, EventStop, StateStopped, true},

		{StateStopped, EventConnected, StateStopped, false},
		{StateStopped, EventLost, StateStopped, false},
		{StateConnected, EventStart, StateConnected, false},
		{StateConnected, EventRetry, StateConnected, false},
		{StateRetrying, EventConnected, StateRetrying, false},
		{StateRetrying, EventLost, StateRetrying, false},
		{StateConnecting, EventStart, StateConnecting, false},
	}
	for _, c := range cases {
		c := c
		t.Run(fmt.Sprintf("%s+%s", c.from, c.ev), func(t *testing.T) {
			to, ok := Transition(c.from, c.ev)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.expect, to)
		})
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "state(42)", State(42).String())
	assert.Equal(t, "retry", EventRetry.String())
}

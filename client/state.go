package client

import "fmt"

type State uint32

const (
	StateStopped State = iota
	StateConnecting
	StateConnected
	StateRetrying
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRetrying:
		return "retrying"
	}
	return fmt.Sprintf("state(%d)", uint32(s))
}

type Event uint8

const (
	EventStart Event = iota
	EventConnected
	EventLost
	EventRetry
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventConnected:
		return "connected"
	case EventLost:
		return "lost"
	case EventRetry:
		return "retry"
	case EventStop:
		return "stop"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// Transition is the complete lifecycle table, without IO.
// Stop is accepted from any state. Returns false for invalid transition.
func Transition(from State, ev Event) (State, bool) {
	if ev == EventStop {
		return StateStopped, true
	}
	switch {
	case from == StateStopped && ev == EventStart:
		return StateConnecting, true
	case from == StateConnecting && ev == EventConnected:
		return StateConnected, true
	case from == StateConnecting && ev == EventLost:
		return StateRetrying, true
	case from == StateConnected && ev == EventLost:
		return StateRetrying, true
	case from == StateRetrying && ev == EventRetry:
		return StateConnecting, true
	}
	return from, false
}

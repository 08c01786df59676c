// Package client keeps a TCP session to EVT-800 inverter alive.
//
// One background goroutine dials the device, reads frames, sends
// acknowledgements and delivers decoded readings to a listener.
// Lost session is retried after fixed delay until Stop.
package client

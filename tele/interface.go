package tele

import (
	"context"

	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

//go:generate protoc --go_out=./ tele.proto

const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Teler publishes readings to MQTT broker.
type Teler interface {
	Init(context.Context, *log2.Log, tele_config.Config) error
	Close()
	Reading(*Reading) error
	Stat() *Stat
}

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - Send* deliver within network timeout or fail; success includes ack from broker
// - hide "connection" concept from upstream API or errors
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, willPayload []byte) error
	SendState(payload []byte) bool
	SendReading(payload []byte) bool
	Close()
}

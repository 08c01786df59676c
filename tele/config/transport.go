package tele_config

import "github.com/juju/errors"

type Transport string

const (
	TransportInvalid Transport = ""
	TransportPaho    Transport = "paho"
	TransportGomqtt  Transport = "gomqtt"
)

// "" -> paho
// "paho", "gomqtt" -> as is
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportInvalid, TransportPaho:
		return TransportPaho, nil
	case TransportGomqtt:
		return TransportGomqtt, nil
	}
	return TransportInvalid, errors.NotValidf("tele transport=%s", s)
}

package client

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/log2"
)

const (
	DefaultPort           = 14889
	DefaultNetworkTimeout = 60 * time.Second
	DefaultRetryDelay     = 60 * time.Second
)

type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Listener func(*evt.Reading)

type Options struct {
	Host string
	Port int
	Log  *log2.Log

	// Idle read timeout, also bounds ACK write.
	NetworkTimeout time.Duration
	RetryDelay     time.Duration
	DialTimeout    time.Duration

	Dial       DialFunc
	OnIdentity func(serial string)
}

func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o *Options) validate() error {
	if o.Host == "" {
		return errors.NotValidf("empty host")
	}
	if o.Port <= 0 || o.Port > 65535 {
		return errors.NotValidf("port=%d", o.Port)
	}
	if o.NetworkTimeout == 0 {
		o.NetworkTimeout = DefaultNetworkTimeout
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = o.NetworkTimeout
	}
	if o.NetworkTimeout < 0 || o.RetryDelay < 0 || o.DialTimeout < 0 {
		return errors.NotValidf("negative timeout")
	}
	if o.Dial == nil {
		d := &net.Dialer{}
		o.Dial = d.DialContext
	}
	return nil
}

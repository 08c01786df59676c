// Separate package is workaround to import cycles.
package tele_config

import (
	"net/url"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/evt800/helpers"
)

const (
	DefaultKeepalive      = 60 * time.Second
	DefaultNetworkTimeout = 30 * time.Second
	DefaultQueueLimit     = 1024
	DefaultTopicPrefix    = "evt800"
)

type Config struct { //nolint:maligned
	Enabled           bool   `hcl:"enable" toml:"enable"`
	Transport         string `hcl:"transport" toml:"transport"`
	LogDebug          bool   `hcl:"log_debug" toml:"log_debug"`
	MqttBroker        string `hcl:"mqtt_broker" toml:"mqtt_broker"`
	MqttUsername      string `hcl:"mqtt_username" toml:"mqtt_username"`
	MqttPassword      string `hcl:"mqtt_password" toml:"mqtt_password"` // secret
	ClientID          string `hcl:"client_id" toml:"client_id"`
	TopicPrefix       string `hcl:"topic_prefix" toml:"topic_prefix"`
	KeepaliveSec      int    `hcl:"keepalive_sec" toml:"keepalive_sec"`
	NetworkTimeoutSec int    `hcl:"network_timeout_sec" toml:"network_timeout_sec"`
	QueuePath         string `hcl:"queue_path" toml:"queue_path"`
	QueueLimit        int    `hcl:"queue_limit" toml:"queue_limit"`
}

// Redacted returns copy without secrets, safe for logs.
func (c Config) Redacted() Config {
	if c.MqttPassword != "" {
		c.MqttPassword = redacted
	}
	if u, err := url.Parse(c.MqttBroker); err == nil {
		c.MqttBroker = u.Redacted()
	}
	return c
}

const redacted = "xxxxx"

func (c *Config) Keepalive() time.Duration {
	return helpers.IntSecondDefault(c.KeepaliveSec, DefaultKeepalive)
}

// NetworkTimeout is at least one second.
func (c *Config) NetworkTimeout() time.Duration {
	d := helpers.IntSecondDefault(c.NetworkTimeoutSec, DefaultNetworkTimeout)
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (c *Config) Prefix() string {
	if c.TopicPrefix == "" {
		return DefaultTopicPrefix
	}
	return c.TopicPrefix
}

func (c *Config) Limit() int {
	if c.QueueLimit <= 0 {
		return DefaultQueueLimit
	}
	return c.QueueLimit
}

func (c *Config) TopicReading() string { return c.Prefix() + "/reading" }
func (c *Config) TopicState() string   { return c.Prefix() + "/state" }

// Validate checks only enabled config.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, err := ParseTransport(c.Transport); err != nil {
		return err
	}
	if c.MqttBroker == "" {
		return errors.NotValidf("tele enabled but mqtt_broker=empty")
	}
	if _, err := url.ParseRequestURI(c.MqttBroker); err != nil {
		return errors.Annotatef(err, "tele mqtt_broker=%s", c.MqttBroker)
	}
	return nil
}

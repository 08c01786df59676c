package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/evt800/client"
	"github.com/temoto/evt800/helpers"
	"github.com/temoto/evt800/log2"
	tele_config "github.com/temoto/evt800/tele/config"
)

type Config struct {
	// includeSeen contains normalized paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []Source `hcl:"include" toml:"include"`

	Device DeviceConfig `hcl:"device" toml:"device"`
	Log    struct {
		Level string `hcl:"level" toml:"level"`
	} `hcl:"log" toml:"log"`
	Persist struct {
		Root string `hcl:"root" toml:"root"`
	} `hcl:"persist" toml:"persist"`
	Tele tele_config.Config `hcl:"tele" toml:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

type DeviceConfig struct {
	Host              string `hcl:"host" toml:"host"`
	Port              int    `hcl:"port" toml:"port"`
	NetworkTimeoutSec int    `hcl:"network_timeout_sec" toml:"network_timeout_sec"`
	RetryDelaySec     int    `hcl:"retry_delay_sec" toml:"retry_delay_sec"`
	DialTimeoutSec    int    `hcl:"dial_timeout_sec" toml:"dial_timeout_sec"`
}

type Source struct {
	Name     string `hcl:"name,key" toml:"name"`
	Optional bool   `hcl:"optional" toml:"optional"`
}

func (d *DeviceConfig) NetworkTimeout() time.Duration {
	return helpers.IntSecondDefault(d.NetworkTimeoutSec, client.DefaultNetworkTimeout)
}
func (d *DeviceConfig) RetryDelay() time.Duration {
	return helpers.IntSecondDefault(d.RetryDelaySec, client.DefaultRetryDelay)
}
func (d *DeviceConfig) DialTimeout() time.Duration {
	return helpers.IntSecondDefault(d.DialTimeoutSec, d.NetworkTimeout())
}

// ClientOptions without Log and hooks.
func (c *Config) ClientOptions() client.Options {
	return client.Options{
		Host:           c.Device.Host,
		Port:           c.Device.Port,
		NetworkTimeout: c.Device.NetworkTimeout(),
		RetryDelay:     c.Device.RetryDelay(),
		DialTimeout:    c.Device.DialTimeout(),
	}
}

// String hides tele secrets.
func (c *Config) String() string {
	return fmt.Sprintf("(device=%+v log=%+v persist=%+v tele=%+v)", c.Device, c.Log, c.Persist, c.Tele.Redacted())
}

func (c *Config) LogLevel() log2.Level {
	l, _ := log2.ParseLevel(c.Log.Level)
	return l
}

func (c *Config) Validate() error {
	errs := make([]error, 0, 4)
	if c.Device.Host == "" {
		errs = append(errs, errors.NotValidf("device host=empty"))
	}
	if c.Device.Port <= 0 || c.Device.Port > 65535 {
		errs = append(errs, errors.NotValidf("device port=%d", c.Device.Port))
	}
	if _, err := log2.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, errors.NotValidf("log level=%s", c.Log.Level))
	}
	if err := c.Tele.Validate(); err != nil {
		errs = append(errs, err)
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source Source, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	if strings.HasSuffix(norm, ".toml") {
		_, err = toml.Decode(string(bs), c)
	} else {
		err = hcl.Unmarshal(bs, c)
	}
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s", source.Name)
		*errs = append(*errs, err)
		return
	}

	var includes []Source
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

// New returns config with defaults, as if read from empty file.
func New() *Config {
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	c.Device.Port = client.DefaultPort
	return c
}

// ReadConfig reads all names in order, later values overwrite earlier.
// With OsFullReader, includes are relative to directory of first name.
func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		return nil, errors.Errorf("code error ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if dir != "" {
			osfs.SetBase(dir)
			names = append([]string{name}, names[1:]...)
		}
	}
	c := New()
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, Source{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

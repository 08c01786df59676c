// Support sub-commands in evt800 application.
// It's simple but fine so far.
package subcmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/evt800/client"
	"github.com/temoto/evt800/config"
	"github.com/temoto/evt800/log2"
)

// Env is what every sub-command gets from main.
type Env struct {
	Config *config.Config
	Log    *log2.Log
	Stdout io.Writer
}

type Mod struct {
	Name  string
	Usage string
	Main  func(ctx context.Context, env *Env, args []string) error
}

func Parse(command string, modules []Mod) (*Mod, error) {
	if command == "" {
		return nil, fmt.Errorf("empty command, expected one of: %s", Names(modules))
	}

	var found *Mod
	for i := range modules {
		m := &modules[i]
		if m.Name == "" {
			panic(fmt.Sprintf("code error Name='' module=%#v", m))
		}
		if command == m.Name {
			found = m
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown command='%s', expected one of: %s", command, Names(modules))
	}
	return found, nil
}

func Names(modules []Mod) string {
	names := make([]string, len(modules))
	for i := range modules {
		names[i] = modules[i].Name
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// NewClient builds client from config with env logger.
// onIdentity may be nil.
func (env *Env) NewClient(onIdentity func(serial string)) (*client.Client, error) {
	opt := env.Config.ClientOptions()
	opt.Log = env.Log
	opt.OnIdentity = onIdentity
	c, err := client.New(opt)
	return c, errors.Annotate(err, "client")
}

func SdNotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}

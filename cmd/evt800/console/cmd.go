// Interactive shell over running client.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/evt800/client"
	"github.com/temoto/evt800/cmd/evt800/subcmd"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/helpers/cli"
)

const modName = "console"

var Mod = subcmd.Mod{Name: modName, Main: Main}

var suggests = []prompt.Suggest{
	{Text: "status", Description: "connection state and address"},
	{Text: "serial", Description: "inverter serial from last poll"},
	{Text: "stat", Description: "session counters"},
	{Text: "probe", Description: "test new TCP connection"},
	{Text: "last", Description: "last reading as table"},
	{Text: "quit", Description: "stop client and exit"},
}

type console struct {
	ctx  context.Context
	c    *client.Client
	w    io.Writer
	last atomic.Value // *evt.Reading
}

func Main(ctx context.Context, env *subcmd.Env, args []string) error {
	c, err := env.NewClient(nil)
	if err != nil {
		return err
	}
	self := newConsole(ctx, c, env.Stdout)
	c.SetDataListener(self.onReading)
	if err = c.Start(); err != nil {
		return errors.Annotate(err, "client start")
	}
	env.Log.Debugf("%s console ready", c.String())

	cli.MainLoop(modName, self.exec, newCompleter(), c.Stop)
	return nil
}

func newConsole(ctx context.Context, c *client.Client, w io.Writer) *console {
	self := &console{ctx: ctx, c: c, w: w}
	self.last.Store((*evt.Reading)(nil))
	return self
}

func newCompleter() prompt.Completer {
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func (self *console) onReading(r *evt.Reading) { self.last.Store(r) }

func (self *console) exec(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
	case "status":
		fmt.Fprintf(self.w, "%s state=%s online=%t last_recv=%s\n",
			self.c.Options().Addr(), self.c.State().String(), self.c.Online(), self.sinceLast())
	case "serial":
		serial := self.c.SerialNumber()
		if serial == "" {
			serial = "unknown"
		}
		fmt.Fprintln(self.w, serial)
	case "stat":
		fmt.Fprintln(self.w, self.c.Stat().String())
	case "probe":
		if err := self.c.TestConnection(self.ctx); err != nil {
			fmt.Fprintf(self.w, "probe error: %v\n", err)
		} else {
			fmt.Fprintln(self.w, "probe ok")
		}
	case "last":
		r := self.last.Load().(*evt.Reading)
		if r == nil {
			fmt.Fprintln(self.w, "no reading yet")
			break
		}
		_ = subcmd.PrintTable(self.w, r)
	case "quit", "exit":
		return false
	default:
		fmt.Fprintf(self.w, "unknown command=%s, try: status serial stat probe last quit\n", line)
	}
	return true
}

func (self *console) sinceLast() string {
	d := self.c.SinceLastRecv()
	if d == 0 {
		return "never"
	}
	return d.Truncate(time.Millisecond).String()
}

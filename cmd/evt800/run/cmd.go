// Connect to inverter gateway and keep receiving readings until signal.
package run

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/evt800/client"
	"github.com/temoto/evt800/cmd/evt800/subcmd"
	"github.com/temoto/evt800/evt"
	"github.com/temoto/evt800/log2"
	"github.com/temoto/evt800/persist"
	"github.com/temoto/evt800/tele"
)

const modName = "run"

var Mod = subcmd.Mod{Name: modName, Usage: "[-print]", Main: Main}

type app struct {
	log      *log2.Log
	print    bool
	stdout   io.Writer
	printMu  sync.Mutex
	teler    tele.Teler
	identity persist.Identity
	persist  persist.Persist
	serial   func() string
}

func Main(ctx context.Context, env *subcmd.Env, args []string) error {
	flagset := flag.NewFlagSet(modName, flag.ContinueOnError)
	flagPrint := flagset.Bool("print", false, "print every reading as table")
	if err := flagset.Parse(args); err != nil {
		return errors.Annotate(err, modName)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := &app{
		log:    env.Log,
		print:  *flagPrint,
		stdout: env.Stdout,
		teler:  tele.New(),
	}
	if err := a.teler.Init(ctx, env.Log, env.Config.Tele); err != nil {
		return errors.Annotate(err, "tele init")
	}
	defer a.teler.Close()

	root := env.Config.Persist.Root
	if err := a.persist.Init("identity", &a.identity, root, root != "", env.Log); err != nil {
		return err
	}
	if err := a.persist.Load(); err != nil {
		// continue with unknown identity
		env.Log.Error(errors.ErrorStack(err))
	}
	if serial, seen := a.identity.Get(); serial != "" {
		env.Log.Infof("last known serial=%s seen=%s", serial, seen.Format(time.RFC3339))
	}

	c, err := env.NewClient(a.onIdentity)
	if err != nil {
		return err
	}
	a.serial = c.SerialNumber
	c.SetDataListener(a.onReading)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigch)

	if err = c.Start(); err != nil {
		return errors.Annotate(err, "client start")
	}
	subcmd.SdNotify(daemon.SdNotifyReady)
	env.Log.Debugf("%s running", c.String())

	wait(ctx, env.Log, sigch, c)
	subcmd.SdNotify(daemon.SdNotifyStopping)
	c.Stop()
	env.Log.Infof("stopped stat=%s tele=%s", c.Stat().String(), a.teler.Stat().String())
	return nil
}

func wait(ctx context.Context, log *log2.Log, sigch <-chan os.Signal, c *client.Client) {
	select {
	case sig := <-sigch:
		log.Infof("signal=%v stopping %s", sig, c.String())
	case <-ctx.Done():
	}
}

func (a *app) onReading(r *evt.Reading) {
	a.log.Debugf("reading %s", r.String())
	serial := ""
	if a.serial != nil {
		serial = a.serial()
	}
	if serial == "" {
		// no poll yet in this process, use identity from last run
		serial, _ = a.identity.Get()
	}
	if err := a.teler.Reading(tele.NewReading(serial, time.Now(), r)); err != nil {
		a.log.Error(errors.ErrorStack(err))
	}
	if a.print {
		a.printMu.Lock()
		defer a.printMu.Unlock()
		if err := subcmd.PrintTable(a.stdout, r); err != nil {
			a.log.Errorf("print err=%v", err)
		}
	}
}

func (a *app) onIdentity(serial string) {
	a.identity.Set(serial, time.Now())
	if err := a.persist.Store(); err != nil {
		a.log.Error(errors.ErrorStack(err))
	}
}

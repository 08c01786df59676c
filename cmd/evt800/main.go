package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/evt800/cmd/evt800/console"
	"github.com/temoto/evt800/cmd/evt800/decode"
	"github.com/temoto/evt800/cmd/evt800/probe"
	"github.com/temoto/evt800/cmd/evt800/run"
	"github.com/temoto/evt800/cmd/evt800/subcmd"
	"github.com/temoto/evt800/config"
	"github.com/temoto/evt800/log2"
)

var log = log2.NewStderr(log2.LDebug)

var modules = []subcmd.Mod{
	console.Mod,
	decode.Mod,
	probe.Mod,
	run.Mod,
}

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "evt800.hcl", "HCL or .toml config file")
	flagHost := cmdline.String("host", "", "device address, overrides config")
	flagPort := cmdline.Int("port", 0, "device TCP port, overrides config")
	flagDebug := cmdline.Bool("debug", false, "debug log level")
	cmdline.Usage = func() {
		fmt.Fprintf(cmdline.Output(), "Usage: %s [option] command [args]\n\nCommands:\n", os.Args[0])
		for _, m := range modules {
			fmt.Fprintf(cmdline.Output(), "  %s %s\n", m.Name, m.Usage)
		}
		fmt.Fprintf(cmdline.Output(), "\nOptions:\n")
		cmdline.PrintDefaults()
	}
	_ = cmdline.Parse(os.Args[1:])

	mod, err := subcmd.Parse(cmdline.Arg(0), modules)
	if err != nil {
		log.Fatal(err)
	}

	explicitConfig := false
	cmdline.Visit(func(f *flag.Flag) { explicitConfig = explicitConfig || f.Name == "config" })

	if subcmd.SdNotify("start") {
		// under systemd assume journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	cfg, err := readConfig(*flagConfig, explicitConfig)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	if *flagHost != "" {
		cfg.Device.Host = *flagHost
	}
	if *flagPort != 0 {
		cfg.Device.Port = *flagPort
	}
	level := cfg.LogLevel()
	if *flagDebug {
		level = log2.LDebug
	}
	log.SetLevel(level)

	// decode works offline, device address not required
	if mod.Name != decode.Mod.Name {
		if err = cfg.Validate(); err != nil {
			log.Fatal(errors.ErrorStack(err))
		}
	}
	log.Debugf("config=%s", cfg.String())

	env := &subcmd.Env{Config: cfg, Log: log, Stdout: os.Stdout}
	if err = mod.Main(context.Background(), env, cmdline.Args()[1:]); err != nil {
		log.Fatalf("%s: %s", mod.Name, errors.ErrorStack(err))
	}
}

// Missing default config is fine, -host flag may be enough.
func readConfig(name string, required bool) (*config.Config, error) {
	if _, err := os.Stat(name); !required && os.IsNotExist(err) {
		log.Debugf("config default file=%s not found, using defaults", name)
		return config.New(), nil
	}
	fs, err := config.NewOsFullReader("")
	if err != nil {
		return nil, err
	}
	return config.ReadConfig(log, fs, name)
}

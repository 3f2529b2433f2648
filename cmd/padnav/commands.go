package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/padnav/pkg/config"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/remote"
)

const remoteTimeout = 3 * time.Second

// remoteFlags are shared by the commands that reach a running instance.
type remoteFlags struct {
	configPath string
	natsURL    string
}

func (f *remoteFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "config file")
	fs.StringVar(&f.natsURL, "nats", "", "NATS server URL")
}

func (f *remoteFlags) load() (*config.Config, error) {
	cfg, _, err := loadConfig(&runOptions{configPath: f.configPath})
	if err != nil {
		return nil, err
	}
	if f.natsURL != "" {
		cfg.Remote.Bus = config.BusNATS
		cfg.Remote.NATSURL = f.natsURL
	}
	if cfg.Remote.Bus != config.BusNATS {
		return nil, withExitCode(fmt.Errorf("remote commands need the nats bus (set remote.bus, PADNAV_BUS or --nats)"), exitUsage)
	}
	return cfg, nil
}

func runSendCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var rf remoteFlags
	rf.register(fs)
	client := fs.String("client", "cli", "client name carried on the subject")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}
	if fs.NArg() == 0 {
		return withExitCode(fmt.Errorf("usage: padnav send [--nats url] [--client name] <direction>..."), exitUsage)
	}

	dirs := make([]nav.Direction, 0, fs.NArg())
	for _, name := range fs.Args() {
		dir, err := nav.ParseDirection(name)
		if err != nil {
			return withExitCode(err, exitUsage)
		}
		dirs = append(dirs, dir)
	}

	cfg, err := rf.load()
	if err != nil {
		return err
	}
	b, err := newBusFn(cfg)
	if err != nil {
		return withExitCode(err, exitRemote)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	for _, dir := range dirs {
		if err := remote.Publish(ctx, b, *client, dir); err != nil {
			return withExitCode(err, exitRemote)
		}
		fmt.Fprintf(out, "sent %s\n", dir)
	}
	return nil
}

func runFocusCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var rf remoteFlags
	rf.register(fs)
	asJSON := fs.Bool("json", false, "print the snapshot as JSON")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}

	cfg, err := rf.load()
	if err != nil {
		return err
	}
	b, err := newBusFn(cfg)
	if err != nil {
		return withExitCode(err, exitRemote)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	snap, err := remote.QueryFocus(ctx, b)
	if err != nil {
		return withExitCode(err, exitRemote)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Fprintf(out, "selected: %s\n", orNone(snap.Selected))
	fmt.Fprintf(out, "root:     %s\n", orNone(snap.Root))
	fmt.Fprintf(out, "traps:    %d\n", snap.TrapDepth)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func runConfigCommand(args []string, out io.Writer) error {
	sub := "show"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "config file")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}

	switch sub {
	case "check":
		cfg, _, err := loadConfig(&runOptions{configPath: *configPath})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "config ok")
		for _, w := range cfg.ValidationWarnings() {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		return nil
	case "show":
		cfg, _, err := loadConfig(&runOptions{configPath: *configPath})
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "path":
		for _, p := range []string{config.UserPath(), config.ProjectPath()} {
			if p == "" {
				continue
			}
			state := "missing"
			if _, err := os.Stat(p); err == nil {
				state = "found"
			}
			fmt.Fprintf(out, "%s (%s)\n", p, state)
		}
		return nil
	default:
		return withExitCode(fmt.Errorf("unknown config command: %s (use check, show, or path)", sub), exitUsage)
	}
}

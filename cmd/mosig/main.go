package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/ext/hostsig"
	_ "github.com/oruby/mosig/ext/journal"
	"github.com/oruby/mosig/kern"
)

type Args struct {
	scenario string
	quantum  int
	maxEnvs  int
	logLevel string
	journal  string
	forward  bool
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [switches]\n\nscenarios:\n", os.Args[0])
	for _, name := range scenarioNames() {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-9s %v\n", name, scenarios[name].about)
	}
	fmt.Fprintln(flag.CommandLine.Output(), "\nswitches:")
	flag.PrintDefaults()
}

func parseArgs(args *Args) {
	def := kern.DefaultConfig()

	flag.Usage = usage
	flag.StringVar(&args.scenario, "scenario", "selfkill", "scenario to run")
	flag.IntVar(&args.quantum, "quantum", def.Quantum, "instructions per time slice")
	flag.IntVar(&args.maxEnvs, "max-envs", def.MaxEnvs, "size of the env table")
	flag.StringVar(&args.logLevel, "log-level", "warn", "trace, debug, info, warn or error")
	flag.StringVar(&args.journal, "journal", "", "record kernel events in this SQLite database")
	flag.BoolVar(&args.forward, "forward", false, "forward host SIGINT and SIGUSR1 to the main env")
	version := flag.Bool("version", false, "print the version")

	flag.Parse()

	if *version {
		fmt.Printf("mosig %v\n", mosig.Version)
		os.Exit(0)
	}
}

func run(args Args) error {
	sc, ok := scenarios[args.scenario]
	if !ok {
		return fmt.Errorf("unknown scenario %q, want one of %v", args.scenario, strings.Join(scenarioNames(), ", "))
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "mosig",
		Level:  hclog.LevelFromString(args.logLevel),
		Output: os.Stderr,
	})

	cfg := kern.DefaultConfig()
	cfg.Quantum = args.quantum
	cfg.MaxEnvs = args.maxEnvs
	cfg.Logger = logger
	cfg.Console = os.Stdout

	k, err := kern.New(cfg)
	if err != nil {
		return err
	}
	defer k.Close()

	if args.journal != "" {
		if _, err := k.Require("journal", args.journal); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	id, err := k.EnvCreate(sc.build(), 0)
	if err != nil {
		return err
	}

	if sc.wait || args.forward {
		ctx := context.Background()
		fwd, err := hostsig.Forward(ctx, k, id, forwarded(logger)...)
		if err != nil {
			return err
		}
		defer fwd.Stop()
		logger.Info("forwarding host signals", "env", id, "pid", os.Getpid())

		err = k.Run(ctx)
		report(logger, k, id)
		return err
	}

	err = k.RunUntilIdle(0)
	report(logger, k, id)
	if errors.Is(err, kern.ErrStalled) {
		logger.Warn("envs left suspended", "live", k.Live())
		return nil
	}
	return err
}

func forwarded(logger hclog.Logger) []os.Signal {
	var ret []os.Signal
	for _, sig := range []mosig.Signal{mosig.SIGINT, mosig.SIGUSR1} {
		hs, err := hostsig.ToHost(sig)
		if err != nil {
			logger.Warn("cannot forward", "signal", sig.String(), "error", err)
			continue
		}
		ret = append(ret, hs)
	}
	return ret
}

func report(logger hclog.Logger, k *kern.Kernel, id kern.EnvID) {
	if x, ok := k.Exited(id); ok {
		fmt.Printf("env %v: %v\n", id, x)
		return
	}
	logger.Info("main env still alive", "env", id, "status", k.Status(id).String())
}

func main() {
	args := Args{}
	parseArgs(&args)

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

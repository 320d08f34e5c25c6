package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tolltracker/internal/cli"
	"tolltracker/internal/core"
	"tolltracker/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext()
	defer stop()
	ctx = log.WithLogger(ctx, logger)

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app, func() error, error) {
		res, err := cli.InitBackend(ctx, logger, cfg)
		if err != nil {
			return nil, nil, err
		}
		a, err := newApp(ctx, res.Store, res.KV, cfg.Location(), logger)
		if err != nil {
			_ = res.Close()
			return nil, nil, err
		}
		return a, res.Close, nil
	}))
}

// run dispatches one command and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, open func(context.Context) (*app, func() error, error)) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentCLI)
	logger.DebugContext(ctx, "Running command", log.FieldOperation, log.OpStartup, "command", args[0])

	a, closeFn, err := open(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.ErrorContext(ctx, "Failed to close backend", log.FieldOperation, log.OpShutdown, log.FieldError, err)
			return
		}
		logger.DebugContext(ctx, "Backend closed", log.FieldOperation, log.OpShutdown)
	}()

	a.out = stdout
	a.errOut = stderr
	if err := a.dispatch(ctx, args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		switch {
		case errors.Is(err, errUsage), errors.Is(err, core.ErrValidation):
			return 2
		default:
			return 1
		}
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: tolltracker <command> [flags]

commands:
  road add|list|rm          manage toll roads
  tariff add|list           set per-category prices on a road
  vehicle add|list|default  manage vehicles
  trip add|list|rm|entries  manage trips
  entry add|rm              record or remove a toll on a trip
  quick                     record a toll on today's trip
  report                    spending by road
  today                     total spent today
  month                     monthly total against the limit
  settings show|set         app settings (key=value)
  reset -yes                erase all data and settings

configuration comes from the environment (or .env):
  DATA_BACKEND  memory|sqlite   SQLITE_DB_PATH   LOG_LEVEL   TIMEZONE
`)
}

// Package main provides the expkit CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/born-ml/expkit/internal/config"
	"github.com/born-ml/expkit/internal/logger"
	"github.com/born-ml/expkit/internal/metrics"
)

const version = "v0.1.0-dev"

// errUsage marks errors caused by bad arguments; usage has already been printed.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "expkit %s - experiment utilities\n\n", version)
	fmt.Fprintln(w, "Usage: expkit [-config file] [-metrics-file file] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                      Show version")
	fmt.Fprintln(w, "  prepare [punkt|encoding...]  Make tokenizer data available (default: punkt)")
	fmt.Fprintln(w, "  validate <file.jsonl>...     Check that every line is valid JSON")
	fmt.Fprintln(w, "  seed [-n N] [-seed S]        Seed all generators and print samples")
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("expkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	configPath := fs.String("config", "", "TOML config file")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() == 0 {
		usage(stderr)
		return 2
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if cmd == "version" {
		fmt.Fprintf(stdout, "expkit %s\n", version)
		return 0
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "expkit: %v\n", err)
		return 1
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}

	logger.SetupWriter(stderr, cfg.LogLevel, cfg.LogFormat)
	logger.Log = logger.Log.With("run_id", uuid.NewString(), "command", cmd)

	switch cmd {
	case "prepare":
		err = runPrepare(ctx, cfg, cmdArgs)
	case "validate":
		err = runValidate(cmdArgs, stdout)
	case "seed":
		err = runSeed(cfg, cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "expkit: unknown command %q\n\n", cmd)
		usage(stderr)
		return 2
	}

	if cfg.MetricsFile != "" {
		if merr := metrics.WriteTextfile(cfg.MetricsFile); merr != nil {
			logger.Log.Warn("metrics not written", "path", cfg.MetricsFile, "err", merr)
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		logger.Log.Error(cmd+" failed", "err", err)
		return 1
	}
}

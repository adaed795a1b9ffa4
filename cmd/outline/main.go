package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/parser"
)

var (
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	version = "dev"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	commit = "unknown"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	buildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand().Run(context.Background(), args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "outline",
		Usage:   "Print the structure of source and markup files",
		Version: versionString(),
		Commands: []*cli.Command{
			newShowCommand(),
			newIndexCommand(),
			newFindCommand(),
			newFilesCommand(),
			newKindsCommand(),
			newInitCommand(),
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"}
}

// loadConfig uses --config when given, else the nearest config file, else
// defaults for the working directory.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.Bool("no-color") {
		cfg.Display.NoColor = true
	}

	return cfg, nil
}

// buildRegistry returns the default registry with the config aliases applied.
func buildRegistry(cfg *config.Config) (*parser.Registry, error) {
	reg := parser.DefaultRegistry()

	keys := make([]string, 0, len(cfg.Aliases))
	for key := range cfg.Aliases {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		target := cfg.Aliases[key]
		if !reg.Alias(key, target) {
			return nil, oops.
				Code("UNSUPPORTED_KIND").
				With("alias", key).
				With("target", target).
				Hint("Run 'outline kinds' to see supported keys").
				Errorf("alias %q points at unsupported kind %q", key, target)
		}
	}

	return reg, nil
}

// signalContext cancels on Ctrl+C or SIGTERM, used by watch loops.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}

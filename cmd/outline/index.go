package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/config"
	"github.com/g5becks/outline/internal/index"
	"github.com/g5becks/outline/internal/parser"
	"github.com/g5becks/outline/internal/ui"
	"github.com/g5becks/outline/internal/watch"
)

func newIndexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Scan a directory tree and write the outline index",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Rescan every file and ignore the lock file"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Maximum files scanned at once (0 = config value)"},
			&cli.BoolFlag{Name: "progress", Usage: "Show a progress bar instead of per-file lines"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Also print unchanged files"},
			&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Re-index when files change"},
		},
		Action: indexAction,
	}
}

func indexAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: outline index [dir]").
			Errorf("expected at most 1 argument, got %d", cmd.Args().Len())
	}

	if cmd.Int("parallel") < 0 {
		return oops.
			Code("INVALID_ARGS").
			With("parallel", cmd.Int("parallel")).
			Errorf("parallel cannot be negative")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	root, err := indexRoot(cmd, cfg)
	if err != nil {
		return err
	}

	opts := index.Options{
		Root:     root,
		Force:    cmd.Bool("force"),
		Parallel: cmd.Int("parallel"),
	}

	if err := runIndex(ctx, cmd, cfg, reg, opts); err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		return nil
	}

	w, err := watch.Tree(root, watch.Options{
		Match:   func(rel string) bool { return index.Selected(rel, cfg.Include, cfg.Exclude) },
		SkipDir: func(rel string) bool { return index.PrunedDir(rel, cfg.Exclude) },
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	errOut := cmd.Root().ErrWriter
	w.OnError(func(err error) { fmt.Fprintln(errOut, err) })

	ctx, stop := signalContext(ctx)
	defer stop()

	fmt.Fprintf(errOut, "watching %s, press Ctrl+C to stop\n", root)

	// Later runs only rescan what changed, so a forced first run is not repeated.
	opts.Force = false
	return w.Run(ctx, func(changed []string) {
		fmt.Fprintf(errOut, "\n%d file(s) changed\n", len(changed))
		if err := runIndex(ctx, cmd, cfg, reg, opts); err != nil {
			fmt.Fprintln(errOut, err)
		}
	})
}

func runIndex(ctx context.Context, cmd *cli.Command, cfg *config.Config, reg *parser.Registry, opts index.Options) error {
	errOut := cmd.Root().ErrWriter
	printer := ui.NewIndexPrinterWithWriter(errOut, cmd.Bool("verbose"), cfg.Display.NoColor)

	var bar *ui.IndexProgress
	if cmd.Bool("progress") {
		bar = ui.NewIndexProgress(errOut)
		opts.OnEvent = bar.HandleEvent
	} else {
		opts.OnEvent = printer.HandleEvent
	}

	result, err := index.Run(ctx, cfg, reg, opts)
	if bar != nil {
		bar.Stop()
	}

	printer.PrintSummary(result)
	return err
}

func indexRoot(cmd *cli.Command, cfg *config.Config) (string, error) {
	if cmd.Args().Len() == 0 {
		return cfg.ConfigDir, nil
	}

	root, err := filepath.Abs(cmd.Args().First())
	if err != nil {
		return "", oops.Wrapf(err, "resolving index root")
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", oops.
			Code("INVALID_ARGS").
			With("dir", root).
			Hint("Pass an existing directory").
			Errorf("%q is not a directory", root)
	}

	return root, nil
}

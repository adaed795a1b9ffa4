package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/index"
	"github.com/g5becks/outline/internal/ui"
)

func newFilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "List indexed files with line and element counts",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: filesAction,
	}
}

func filesAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ix, err := index.Load(cfg.OutputDir())
	if err != nil {
		return err
	}

	stats := make([]ui.IndexStat, 0, len(ix.Files))
	for _, file := range ix.Files {
		stats = append(stats, ui.IndexStat{
			Path:     file.Path,
			Scanner:  file.Scanner,
			Lines:    file.Lines,
			Elements: element.Count(file.Elements),
			Warning:  file.Warning,
		})
	}

	out := cmd.Root().Writer
	if cmd.Bool("json") || cfg.Display.Format == "json" {
		return ui.RenderJSON(out, stats)
	}

	fmt.Fprintf(out, "%s (generated %s)\n", ix.Root, ix.Generated.Local().Format("2006-01-02 15:04:05"))
	ui.RenderStats(out, stats)
	return nil
}

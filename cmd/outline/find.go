package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/index"
	"github.com/g5becks/outline/internal/search"
	"github.com/g5becks/outline/internal/ui"
)

func newFindCommand() *cli.Command {
	kinds := make([]string, 0, len(element.Kinds()))
	for _, k := range element.Kinds() {
		kinds = append(kinds, string(k))
	}

	return &cli.Command{
		Name:      "find",
		Usage:     "Fuzzy search element names in the index",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Only this kind: " + strings.Join(kinds, ", ")},
			&cli.StringFlag{Name: "path", Usage: "Only files matching this glob"},
			&cli.BoolFlag{Name: "docs", Usage: "Also match doc comments"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Max results (0 = config default)"},
			&cli.BoolFlag{Name: "all", Usage: "Show all results (no limit)"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: findAction,
	}
}

func findAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: outline find <query>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ix, err := index.Load(cfg.OutputDir())
	if err != nil {
		return err
	}

	results, err := search.Elements(ix, search.Options{
		Query: cmd.Args().First(),
		Kind:  element.Kind(strings.ToLower(cmd.String("kind"))),
		Path:  cmd.String("path"),
		Docs:  cmd.Bool("docs"),
		Limit: resolveLimit(cmd, cfg.Display.FindLimit),
	})
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if cmd.Bool("json") || cfg.Display.Format == "json" {
		return ui.RenderJSON(out, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}

	ui.RenderResults(out, results, cmd.Bool("docs"))
	return nil
}

func resolveLimit(cmd *cli.Command, fallback int) int {
	if cmd.Bool("all") {
		return 0
	}
	if cmd.IsSet("limit") && cmd.Int("limit") > 0 {
		return cmd.Int("limit")
	}
	return fallback
}

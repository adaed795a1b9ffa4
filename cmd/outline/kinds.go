package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/ui"
)

func newKindsCommand() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "List supported file kinds and their scanners",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: kindsAction,
	}
}

func kindsAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	keys := reg.Keys()
	rows := make([]ui.KindRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, ui.KindRow{
			Key:     key,
			Scanner: reg.Name(key),
			Alias:   cfg.Aliases[key],
		})
	}

	if cmd.Bool("json") {
		return ui.RenderJSON(cmd.Root().Writer, rows)
	}

	ui.RenderKinds(cmd.Root().Writer, rows)
	return nil
}

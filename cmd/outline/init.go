package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/config"
)

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a starter outline.toml",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing outline.toml"},
		},
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return oops.Wrapf(err, "getting working directory")
		}
		dir = wd
	}

	path, err := config.WriteStarter(dir, cmd.Bool("force"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "created %s\n", path)
	return nil
}

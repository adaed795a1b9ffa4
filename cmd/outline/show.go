package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/outline/internal/element"
	"github.com/g5becks/outline/internal/parser"
	"github.com/g5becks/outline/internal/source"
	"github.com/g5becks/outline/internal/ui"
	"github.com/g5becks/outline/internal/watch"
)

type showOutput struct {
	Ref      string            `json:"ref"`
	Key      string            `json:"key"`
	Scanner  string            `json:"scanner"`
	Elements []element.Element `json:"elements"`
}

type showOptions struct {
	kind     string
	offset   int
	json     bool
	hideDocs bool
	noColor  bool
}

func newShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the element tree of files or URLs",
		ArgsUsage: "<file|url>...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "File kind key to scan as, e.g. .vue"},
			&cli.IntFlag{Name: "offset", Usage: "Line offset added to every reported line"},
			&cli.BoolFlag{Name: "no-docs", Usage: "Hide doc comments and synthetic doc nodes"},
			&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Re-print when a file changes"},
		},
		Action: showAction,
	}
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: outline show <file|url>...").
			Errorf("expected at least 1 argument")
	}

	if cmd.Int("offset") < 0 {
		return oops.
			Code("INVALID_ARGS").
			With("offset", cmd.Int("offset")).
			Errorf("offset cannot be negative")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	opts := showOptions{
		kind:     parser.NormalizeKey(cmd.String("kind")),
		offset:   cmd.Int("offset"),
		json:     cmd.Bool("json") || cfg.Display.Format == "json",
		hideDocs: cmd.Bool("no-docs") || cfg.Display.HideDocs,
		noColor:  cfg.Display.NoColor,
	}

	if opts.kind != "" && !reg.Supports(opts.kind) {
		return unsupportedKind(opts.kind, opts.kind)
	}

	loader := source.NewLoader(cfg)
	defer func() { _ = loader.Close() }()

	refs := cmd.Args().Slice()
	out := cmd.Root().Writer

	if err := showOnce(ctx, out, cmd.Root().ErrWriter, loader, reg, refs, opts); err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		return nil
	}

	return watchShow(ctx, cmd, loader, reg, refs, opts)
}

func watchShow(
	ctx context.Context,
	cmd *cli.Command,
	loader *source.Loader,
	reg *parser.Registry,
	refs []string,
	opts showOptions,
) error {
	var local []string
	for _, ref := range refs {
		if !source.IsURL(ref) {
			local = append(local, ref)
		}
	}

	if len(local) == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("--watch only works with local files").
			Errorf("nothing to watch")
	}

	w, err := watch.Files(local, watch.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	errOut := cmd.Root().ErrWriter
	w.OnError(func(err error) { fmt.Fprintln(errOut, err) })

	ctx, stop := signalContext(ctx)
	defer stop()

	fmt.Fprintf(errOut, "watching %d file(s), press Ctrl+C to stop\n", len(local))

	return w.Run(ctx, func(changed []string) {
		fmt.Fprintf(errOut, "\n%s changed: %d file(s)\n", time.Now().Format(time.TimeOnly), len(changed))
		if err := showOnce(ctx, cmd.Root().Writer, errOut, loader, reg, refs, opts); err != nil {
			fmt.Fprintln(errOut, err)
		}
	})
}

func showOnce(
	ctx context.Context,
	out io.Writer,
	errOut io.Writer,
	loader *source.Loader,
	reg *parser.Registry,
	refs []string,
	opts showOptions,
) error {
	results := make([]showOutput, 0, len(refs))

	for _, ref := range refs {
		doc, err := loader.Load(ctx, ref)
		if err != nil {
			return err
		}

		if !doc.ValidUTF8 {
			fmt.Fprintf(errOut, "warning: %s is not valid UTF-8, names may be garbled\n", ref)
		}

		key := doc.Key
		if opts.kind != "" {
			key = opts.kind
		}

		roots, ok := reg.Scan(key, doc.Lines(), opts.offset)
		if !ok {
			return unsupportedKind(ref, key)
		}

		if opts.hideDocs {
			roots = element.StripSynthetic(roots)
		}

		results = append(results, showOutput{
			Ref:      ref,
			Key:      key,
			Scanner:  reg.Name(key),
			Elements: roots,
		})
	}

	if opts.json {
		return ui.RenderJSON(out, results)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		ui.RenderTree(out, result.Ref, result.Elements, ui.TreeOptions{
			HideDocs: opts.hideDocs,
			NoColor:  opts.noColor,
		})
	}

	return nil
}

func unsupportedKind(ref string, key string) error {
	if key == "" {
		return oops.
			Code("UNSUPPORTED_KIND").
			With("ref", ref).
			Hint("Pass --kind to choose a scanner, see 'outline kinds'").
			Errorf("cannot tell the file kind of %q", ref)
	}

	return oops.
		Code("UNSUPPORTED_KIND").
		With("ref", ref).
		With("key", key).
		Hint("Run 'outline kinds' to see supported keys, or add an alias in outline.toml").
		Errorf("no scanner registered for %q", key)
}

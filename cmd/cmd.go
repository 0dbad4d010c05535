package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rubiojr/usinglower/cmd/dev"
	"github.com/rubiojr/usinglower/compiler"
	"github.com/rubiojr/usinglower/dispose"
	"github.com/rubiojr/usinglower/lower"
)

// Execute runs the usinglower CLI with the given version string.
func Execute(version string) {
	if err := newCommand(version, os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errReported) {
			report(os.Stderr, newPalette(os.Stderr, colorEnabled(os.Stderr, false)), err)
		}
		os.Exit(1)
	}
}

// errReported is returned by actions that already printed their
// diagnostics.
var errReported = errors.New("errors reported")

func newCommand(version string, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:                   "usinglower",
		Usage:                  "Lower JavaScript using and await using declarations",
		Version:                version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "protocol",
				Aliases: []string{"p"},
				Usage:   "Disposal runtime protocol (context or stack)",
				Value:   dispose.ProtocolContext.String(),
				Sources: cli.EnvVars("USINGLOWER_PROTOCOL"),
			},
			&cli.BoolFlag{
				Name:  "script",
				Usage: "Parse .js files as classic scripts instead of modules",
			},
			&cli.StringFlag{
				Name:  "runtime",
				Usage: "Import helpers from this module path instead of inlining them",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop at the first diagnostic in each file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every lowered scope to stderr",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if !cmd.Bool("verbose") {
				return ctx, nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return ctx, fmt.Errorf("creating logger: %w", err)
			}
			lower.SetLogger(l)
			compiler.SetLogger(l)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "emit",
				Usage:     "Print the lowered source of a file",
				ArgsUsage: "<file.js>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return emitAction(cmd, stdout, stderr)
				},
			},
			{
				Name:      "build",
				Usage:     "Lower files and directories into an output directory",
				ArgsUsage: "[file.js | directory]...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "dist",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Files lowered in parallel",
						Value:   runtime.NumCPU(),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return buildAction(ctx, cmd, stdout, stderr)
				},
			},
			{
				Name:      "check",
				Usage:     "Report misuse of resource declarations without writing output",
				ArgsUsage: "[file.js | directory]...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return checkAction(cmd, stdout, stderr)
				},
			},
			dev.Command(),
		},
	}
}

// compilerFrom builds a Compiler from the global flags.
func compilerFrom(cmd *cli.Command) (*compiler.Compiler, error) {
	protocol, err := dispose.ParseProtocol(cmd.String("protocol"))
	if err != nil {
		return nil, err
	}
	return &compiler.Compiler{
		Protocol: protocol,
		Script:   cmd.Bool("script"),
		Runtime:  cmd.String("runtime"),
		FailFast: cmd.Bool("fail-fast"),
	}, nil
}

func emitAction(cmd *cli.Command, stdout, stderr io.Writer) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: usinglower emit <file.js>")
	}
	comp, err := compilerFrom(cmd)
	if err != nil {
		return err
	}
	src, err := comp.Emit(cmd.Args().First())
	if err != nil {
		report(stderr, paletteFor(cmd, stderr), err)
		return errReported
	}
	fmt.Fprint(stdout, src)
	return nil
}

func buildAction(ctx context.Context, cmd *cli.Command, stdout, stderr io.Writer) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		targets = []string{"."}
	}
	comp, err := compilerFrom(cmd)
	if err != nil {
		return err
	}
	comp.Jobs = cmd.Int("jobs")

	pal := paletteFor(cmd, stderr)
	outputs, err := comp.BuildAll(ctx, targets, cmd.String("output"))
	failed := 0
	for _, o := range outputs {
		if o.Err != nil {
			failed++
			report(stderr, pal, o.Err)
			continue
		}
		verb := pal.ok.Render("lowered")
		if !o.Changed {
			verb = pal.dim.Render("copied ")
		}
		fmt.Fprintf(stdout, "%s %s -> %s\n", verb, o.Path, o.Dest)
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "\n%d files, %d built, %s\n", len(outputs), len(outputs)-failed, pal.fail.Render(fmt.Sprintf("%d failed", failed)))
		return errReported
	}
	return err
}

func checkAction(cmd *cli.Command, stdout, stderr io.Writer) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		targets = []string{"."}
	}
	comp, err := compilerFrom(cmd)
	if err != nil {
		return err
	}
	files, err := compiler.CollectFiles(targets)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	pal := paletteFor(cmd, stderr)
	failed := 0
	for _, f := range files {
		if err := comp.Check(f.Path); err != nil {
			failed++
			report(stderr, pal, err)
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "\n%d files, %s\n", len(files), pal.fail.Render(fmt.Sprintf("%d with errors", failed)))
		return errReported
	}
	fmt.Fprintf(stdout, "%d files, %s\n", len(files), pal.ok.Render("ok"))
	return nil
}

// Package dev implements developer tooling subcommands for usinglower.
package dev

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/usinglower/dispose"
)

// Command returns the "dev" CLI command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Developer tools for usinglower",
		Commands: []*cli.Command{
			helpersCommand(),
			runtimeCommand(),
		},
	}
}

func helpersCommand() *cli.Command {
	return &cli.Command{
		Name:  "helpers",
		Usage: "List the runtime helpers lowered code calls",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return listHelpers(cmd.Root().Writer)
		},
	}
}

func listHelpers(w io.Writer) error {
	for _, name := range dispose.Names() {
		h, _ := dispose.Get(name)
		if _, err := fmt.Fprintf(w, "%-10s %s\n", h.Name, h.Protocol); err != nil {
			return err
		}
	}
	return nil
}

func runtimeCommand() *cli.Command {
	return &cli.Command{
		Name:  "runtime",
		Usage: "Write the helpers as ES modules for use with --runtime",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the helper modules are written to",
				Value:   "runtime",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			written, err := WriteRuntime(cmd.String("output"))
			for _, path := range written {
				fmt.Fprintf(cmd.Root().Writer, "Created %s\n", path)
			}
			return err
		},
	}
}

// WriteRuntime writes every registered helper to dir as <name>.js, an ES
// module whose default export is the helper. Those are the modules a
// program lowered with a runtime path imports.
func WriteRuntime(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}
	var written []string
	for _, name := range dispose.Names() {
		h, _ := dispose.Get(name)
		path := filepath.Join(dir, name+".js")
		if err := writeTemplate(path, moduleTmpl, moduleData{Name: h.Name, Protocol: h.Protocol.String(), Source: h.Render(h.Name)}); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

type moduleData struct {
	Name     string
	Protocol string
	Source   string
}

func writeTemplate(path, tmplStr string, data moduleData) error {
	t, err := template.New("").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	return t.Execute(f, data)
}

var moduleTmpl = `// Code generated by usinglower dev runtime. DO NOT EDIT.
// {{.Name}}: {{.Protocol}} disposal protocol helper.
export default {{.Source}}
`

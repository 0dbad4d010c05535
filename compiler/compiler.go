// Package compiler runs the lowering pipeline over JavaScript files: parse,
// validate, lower resource declarations and print the result.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/dispose"
	"github.com/rubiojr/usinglower/lower"
	"github.com/rubiojr/usinglower/parser"
	"github.com/rubiojr/usinglower/printer"
)

// Compiler orchestrates the lowering pipeline.
type Compiler struct {
	// Protocol selects the disposal runtime the output calls into.
	Protocol dispose.Protocol
	// Script parses .js inputs as classic scripts. .mjs files are always
	// modules and .cjs files always scripts.
	Script bool
	// Runtime, when set, imports helpers from this module path instead of
	// inlining them. Only modules can import.
	Runtime string
	// FailFast stops lowering a file at its first diagnostic.
	FailFast bool
	// Jobs bounds the files lowered concurrently by BuildAll. Values
	// below one mean one.
	Jobs int
}

// CompileResult holds the output of a compilation.
type CompileResult struct {
	Source     string
	Program    *ast.Program
	SourceFile string
	// Changed is false when the input declared no resources; Source is
	// then the input unchanged.
	Changed bool
}

// Compile reads a file and lowers it.
func (c *Compiler) Compile(filename string) (*CompileResult, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return c.CompileSource(src, filename)
}

// CompileSource lowers src. name is used for positions and to pick the
// source type.
func (c *Compiler) CompileSource(src []byte, name string) (*CompileResult, error) {
	start := time.Now()
	prog, err := c.ParseSource(src, name)
	if err != nil {
		return nil, err
	}
	if err := c.checks().Run(prog); err != nil {
		return nil, err
	}
	if c.Runtime != "" && prog.SourceType == ast.SourceScript && lower.HasResources(prog) {
		return nil, fmt.Errorf("%s: runtime helpers from %q cannot be imported into a script", name, c.Runtime)
	}
	out, err := c.transform().Transform(prog)
	if err != nil {
		return nil, err
	}

	res := &CompileResult{Program: out, SourceFile: name, Changed: out != prog}
	if res.Changed {
		res.Source = printer.Print(out)
	} else {
		res.Source = string(src)
	}
	Logger().Debug("compiled",
		zap.String("file", name),
		zap.Stringer("source_type", prog.SourceType),
		zap.Bool("changed", res.Changed),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// ParseSource parses src without lowering it.
func (c *Compiler) ParseSource(src []byte, name string) (*ast.Program, error) {
	p := &parser.Parser{SourceType: c.sourceType(name)}
	return p.Parse(name, src)
}

// Check parses and validates a file without lowering it.
func (c *Compiler) Check(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	prog, err := c.ParseSource(src, filename)
	if err != nil {
		return err
	}
	return c.checks().Run(prog)
}

// Emit lowers a file and returns the output source.
func (c *Compiler) Emit(filename string) (string, error) {
	result, err := c.Compile(filename)
	if err != nil {
		return "", err
	}
	return result.Source, nil
}

// Build lowers a file and writes the result to output, creating parent
// directories as needed.
func (c *Compiler) Build(filename, output string) (*CompileResult, error) {
	result, err := c.Compile(filename)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(result.Source), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	return result, nil
}

func (c *Compiler) sourceType(name string) ast.SourceType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mjs":
		return ast.SourceModule
	case ".cjs":
		return ast.SourceScript
	}
	if c.Script {
		return ast.SourceScript
	}
	return ast.SourceModule
}

func (c *Compiler) checks() ast.CheckChain {
	return ast.CheckChain{lower.Validate}
}

func (c *Compiler) transform() ast.Transform {
	opts := lower.Options{Protocol: c.Protocol, FailFast: c.FailFast}
	if c.Runtime != "" {
		runtime := c.Runtime
		opts.NewHelpers = func(u *ast.UIDs) lower.Helpers { return dispose.NewImporter(u, runtime) }
	}
	return ast.Chain(lower.Transform(opts))
}

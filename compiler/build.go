package compiler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// sourceExts are the extensions collected from directories.
var sourceExts = map[string]bool{".js": true, ".mjs": true, ".cjs": true}

// Input is a source file found by CollectFiles. Rel is its path relative
// to the target it was found under; outputs mirror it.
type Input struct {
	Path string
	Rel  string
}

// CollectFiles expands targets into source files. Directories are walked
// recursively for .js, .mjs and .cjs files; files are taken as given.
// Hidden directories and node_modules are skipped.
func CollectFiles(targets []string) ([]Input, error) {
	var files []Input
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", target, err)
		}
		if !info.IsDir() {
			files = append(files, Input{Path: target, Rel: filepath.Base(target)})
			continue
		}
		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != target && (strings.HasPrefix(name, ".") || name == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if !sourceExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			rel, err := filepath.Rel(target, path)
			if err != nil {
				return err
			}
			files = append(files, Input{Path: path, Rel: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", target, err)
		}
	}
	return files, nil
}

// Output describes the result of lowering one file in BuildAll. Err is
// set when the file failed; nothing was written to Dest then.
type Output struct {
	Input
	Dest    string
	Changed bool
	Err     error
}

// BuildAll lowers every file found under targets and writes each result
// to outDir, mirroring its path relative to its target. Up to c.Jobs files
// are processed at once. A failing file does not stop the others. One
// Output is returned per file, and every failure is also returned
// combined with multierr, in input order.
func (c *Compiler) BuildAll(ctx context.Context, targets []string, outDir string) ([]Output, error) {
	files, err := CollectFiles(targets)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found")
	}

	jobs := c.Jobs
	if jobs < 1 {
		jobs = 1
	}
	outputs := make([]Output, len(files))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, in := range files {
		g.Go(func() error {
			out := Output{Input: in, Dest: filepath.Join(outDir, in.Rel)}
			defer func() { outputs[i] = out }()
			if out.Err = ctx.Err(); out.Err != nil {
				return nil
			}
			res, err := c.Build(in.Path, out.Dest)
			if err != nil {
				out.Err = err
				return nil
			}
			out.Changed = res.Changed
			return nil
		})
	}
	_ = g.Wait()

	built := 0
	for _, o := range outputs {
		if o.Err == nil {
			built++
		} else {
			err = multierr.Append(err, o.Err)
		}
	}
	Logger().Debug("build finished",
		zap.Int("files", len(files)),
		zap.Int("built", built),
		zap.Int("jobs", jobs),
		zap.Error(err),
	)
	return outputs, err
}

package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/usinglower/dispose"
	"github.com/rubiojr/usinglower/lower"
)

// seedCorpus loads the sources under examples/ as seed inputs for
// coverage-guided fuzzing.
func seedCorpus(f *testing.F) {
	entries, err := os.ReadDir(filepath.Join("..", "examples"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !sourceExts[filepath.Ext(e.Name())] {
				continue
			}
			data, err := os.ReadFile(filepath.Join("..", "examples", e.Name()))
			if err != nil {
				continue
			}
			f.Add(string(data))
		}
	}

	// Hand-crafted seeds targeting known fragile areas
	seeds := []string{
		// Top level promotion
		"using a = x();\nexport const b = a.b;\nexport default class {}\n",
		"export { c };\nusing c = x();\nfunction f() { return c; }\n",
		// Nested scopes
		"function f() { using a = x(); { using b = y(); } }",
		"const f = async () => { await using a = x(); return () => { using b = y(); }; };",
		// Loops
		"for (using x of xs);",
		"for await (await using x of xs) { x.go(); }",
		"for (using _x of xs) { using _x2 = y(); }",
		// Switch
		"switch (v) { case 1: using a = x(); break; default: using b = y(); }",
		// Classes
		"class A { static { using a = x(); } m() { using b = y(); } }",
		// Placement inside try and catch
		"try { using a = x(); } catch (e) { using b = y(); } finally { using c = z(); }",
		// Labels and if bodies
		"outer: { using a = x(); break outer; }",
		"if (ok) { using a = x(); } else { using b = y(); }",
		// Invalid
		"function f() { using a; }",
		"function f() { await using a = x(); }",
		"for (using a = x(); ;) {}",
		// Empty/minimal
		"",
		"using",
		"const using = 1;",
	}
	for _, s := range seeds {
		f.Add(s)
	}
}

// FuzzCompileSource feeds the full pipeline with both protocols. Inputs
// that lower successfully must print to source that parses again and
// declares no resources.
func FuzzCompileSource(f *testing.F) {
	seedCorpus(f)

	f.Fuzz(func(t *testing.T, src string) {
		for _, p := range []dispose.Protocol{dispose.ProtocolContext, dispose.ProtocolStack} {
			c := &Compiler{Protocol: p}
			res, err := c.CompileSource([]byte(src), "fuzz.js")
			if err != nil {
				if lower.HasKind(err, lower.KindInternal) {
					t.Errorf("internal error on input:\n%s\nerror: %s", src, err)
				}
				if strings.Contains(strings.ToLower(err.Error()), "runtime error") {
					t.Errorf("runtime panic surfaced as error on input:\n%s\nerror: %s", src, err)
				}
				continue
			}
			if !res.Changed {
				continue
			}
			prog, err := c.ParseSource([]byte(res.Source), "fuzz.js")
			if err != nil {
				t.Errorf("lowered output does not parse (%s protocol):\n%s\nerror: %s", p, res.Source, err)
				continue
			}
			if lower.HasResources(prog) {
				t.Errorf("lowered output still declares resources (%s protocol):\n%s", p, res.Source)
			}
		}
	})
}

package ast

// Transform rewrites an AST. Implementations must not mutate the input
// program; a transform with nothing to do returns its input unchanged.
type Transform interface {
	Name() string
	Transform(prog *Program) (*Program, error)
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*Program) (*Program, error)
}

func (t TransformFunc) Name() string                              { return t.N }
func (t TransformFunc) Transform(prog *Program) (*Program, error) { return t.F(prog) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one; the first
// error stops the chain.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(prog *Program) (*Program, error) {
			for _, t := range transforms {
				out, err := t.Transform(prog)
				if err != nil {
					return prog, err
				}
				prog = out
			}
			return prog, nil
		},
	}
}

// Contains reports whether any node under root satisfies pred.
func Contains(root Node, pred func(Node) bool) bool {
	found := false
	Inspect(root, func(n Node) bool {
		if found {
			return false
		}
		if pred(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

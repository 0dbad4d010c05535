package lower

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rubiojr/usinglower/ast"
)

// scope is the disposal context of one lowered region. All resource
// declarations directly inside the region register with the same context.
type scope struct {
	boundary ast.Node
	ctx      *ast.Identifier // context object, or the stack array
	factory  ast.Expr        // context factory, or the stack dispose helper
	use      ast.Expr        // stack push helper
	errID    *ast.Identifier
	hasErrID *ast.Identifier

	resources int
	async     bool
}

// rewrite scans the direct statements of a region and routes every resource
// initializer through the protocol. A switch passes one list per case; they
// all share a single scope. It returns nil, leaving the lists untouched, when
// no statement declares a resource.
func (l *lowerer) rewrite(boundary ast.Node, lists ...[]ast.Statement) *scope {
	var sc *scope
	for _, list := range lists {
		for _, s := range list {
			decl, ok := s.(*ast.VariableDeclaration)
			if !ok {
				continue
			}
			c := Classify(decl, l.table)
			if !c.IsResource {
				continue
			}
			if sc == nil {
				sc = &scope{boundary: boundary}
				l.proto.open(sc)
			}
			sc.async = sc.async || c.Mode == ModeAsync
			// promoted declarations are already plain var
			if !l.table.Consume(decl) {
				decl.Kind = ast.KindConst
			}
			for _, d := range decl.Declarations {
				if d.Init == nil {
					l.report(errorAt(KindInvalid, d, "missing initializer in %s declaration", kindFor(c.Mode)))
					continue
				}
				d.Init = l.proto.register(sc, d.Init, c.Mode)
				sc.resources++
			}
		}
	}
	if sc != nil {
		l.proto.close(sc)
	}
	return sc
}

// wrap guards body with the scope's try statement and carries the region's
// source position over to it.
func (l *lowerer) wrap(sc *scope, region ast.Node, body []ast.Statement) *ast.TryStatement {
	try := l.proto.wrap(sc, body)
	if _, ok := region.(*ast.StaticBlock); ok {
		// class members print their own comments
		try.Loc = ast.SpanOf(region)
	} else {
		ast.Inherit(try, region)
		region.Base().Comments = nil
	}
	try.Block.Loc = try.Loc

	Logger().Debug("lowered disposal scope",
		zap.String("boundary", nodeName(region)),
		zap.String("context", sc.ctx.Name),
		zap.Int("resources", sc.resources),
		zap.Bool("async", sc.async),
		zap.Stringer("pos", ast.SpanOf(region)),
	)
	return try
}

func nodeName(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

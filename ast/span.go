package ast

import (
	"fmt"

	"modernc.org/token"
)

// Span is the source range a node was parsed from. The zero Span marks a
// synthesized node with no source location.
type Span struct {
	Start token.Position
	End   token.Position
}

// IsValid reports whether the span carries a real source location.
func (s Span) IsValid() bool { return s.Start.Line > 0 }

func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	if s.Start.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Start.Filename, s.Start.Line, s.Start.Column)
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// Comment is a source comment attached to the node that follows it.
type Comment struct {
	Text  string // comment text including the // or /* */ delimiters
	Block bool
	Loc   Span
}

// NodeBase carries the source-position metadata shared by every node.
type NodeBase struct {
	Loc      Span
	Comments []Comment // leading comments
}

// Base returns the node's metadata.
func (b *NodeBase) Base() *NodeBase { return b }

// Inherit copies source position and comments from src onto dst, so nodes
// that replace src keep mapping back to the original source.
func Inherit[T Node](dst T, src Node) T {
	sb := src.Base()
	db := dst.Base()
	db.Loc = sb.Loc
	if len(sb.Comments) > 0 {
		db.Comments = append([]Comment(nil), sb.Comments...)
	}
	return dst
}

// SpanOf returns the span of n, or the zero Span for nil nodes.
func SpanOf(n Node) Span {
	if n == nil {
		return Span{}
	}
	return n.Base().Loc
}

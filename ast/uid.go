package ast

import (
	"strconv"
	"strings"
)

// UIDs hands out identifier names that collide with nothing in a program.
// Every identifier, label and private name seen in the program is
// reserved, so a generated name never shadows or captures a user binding.
type UIDs struct {
	used map[string]bool
}

// NewUIDs reserves every name appearing in prog.
func NewUIDs(prog *Program) *UIDs {
	u := &UIDs{used: make(map[string]bool)}
	Inspect(prog, func(n Node) bool {
		switch nd := n.(type) {
		case *Identifier:
			u.used[nd.Name] = true
		case *ImportSpecifier:
			if nd.Imported != "" {
				u.used[nd.Imported] = true
			}
		}
		return true
	})
	return u
}

// Reserve marks name as taken.
func (u *UIDs) Reserve(name string) { u.used[name] = true }

// Used reports whether name is taken.
func (u *UIDs) Used(name string) bool { return u.used[name] }

// Generate returns the first free name of the form _base, _base2, _base3...
// Leading underscores and trailing digits of base are dropped first so
// generating from "_x2" yields "_x", "_x2", ...
func (u *UIDs) Generate(base string) string {
	base = strings.TrimLeft(toIdentifier(base), "_")
	base = strings.TrimRight(base, "0123456789")
	if base == "" {
		base = "temp"
	}
	for i := 1; ; i++ {
		name := "_" + base
		if i > 1 {
			name += strconv.Itoa(i)
		}
		if !u.used[name] {
			u.used[name] = true
			return name
		}
	}
}

// GenerateIdent is Generate returning a fresh Identifier.
func (u *UIDs) GenerateIdent(base string) *Identifier {
	return &Identifier{Name: u.Generate(base)}
}

// GenerateFor derives a name from a binding pattern: the identifier's own
// name, or "ref" for destructuring patterns.
func (u *UIDs) GenerateFor(p Pattern) *Identifier {
	if id, ok := p.(*Identifier); ok {
		return u.GenerateIdent(id.Name)
	}
	return u.GenerateIdent("ref")
}

// toIdentifier replaces characters that cannot appear in an identifier.
func toIdentifier(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 0x7f {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

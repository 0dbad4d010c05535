// Package dispose describes the runtime side of lowered resource
// declarations: the two call shapes lowered code can target, the
// JavaScript helpers that implement them, and helper injection.
//
// Context and Stack in runtime.go are a reference model for tests. They
// mirror the disposal order and error aggregation of the JavaScript
// helpers in Go so those rules can be checked without a JavaScript engine;
// the lowering never calls them.
package dispose

import (
	"fmt"
	"strings"
)

// Protocol selects the runtime call shape emitted for a disposal scope.
type Protocol int

const (
	// ProtocolContext is the single-context shape: a factory returns an
	// object with u/a/d methods and an e error slot.
	ProtocolContext Protocol = iota
	// ProtocolStack is the older explicit-stack shape:
	// using(stack, value, isAsync) and dispose(stack, error, hasError).
	ProtocolStack
)

// Member names of the context object.
const (
	MethodUse      = "u" // register a sync resource
	MethodUseAsync = "a" // register an async resource
	MethodDispose  = "d" // dispose everything in reverse order
	FieldError     = "e" // error thrown by the protected region
)

// Helper names.
const (
	HelperUsingCtx = "usingCtx"
	HelperUsing    = "using"
	HelperDispose  = "dispose"
)

func (p Protocol) String() string {
	switch p {
	case ProtocolContext:
		return "context"
	case ProtocolStack:
		return "stack"
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// SupportsSwitch reports whether one disposal scope can span every case of
// a switch statement. Only the context shape can.
func (p Protocol) SupportsSwitch() bool { return p == ProtocolContext }

// Helpers returns the helper names a scope of this protocol calls, in the
// order they are first requested.
func (p Protocol) Helpers() []string {
	if p == ProtocolStack {
		return []string{HelperUsing, HelperDispose}
	}
	return []string{HelperUsingCtx}
}

// ParseProtocol parses a protocol name as accepted on the command line.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "context", "ctx":
		return ProtocolContext, nil
	case "stack":
		return ProtocolStack, nil
	}
	return 0, fmt.Errorf("unknown disposal protocol %q (want context or stack)", s)
}

package dispose

import (
	"context"
	"errors"
	"fmt"
)

// Disposer is a resource released synchronously.
type Disposer interface {
	Dispose() error
}

// AsyncDisposer is a resource whose release is awaited.
type AsyncDisposer interface {
	DisposeAsync(ctx context.Context) error
}

// DisposerFunc adapts a function to Disposer.
type DisposerFunc func() error

func (f DisposerFunc) Dispose() error { return f() }

// AsyncDisposerFunc adapts a function to AsyncDisposer.
type AsyncDisposerFunc func(ctx context.Context) error

func (f AsyncDisposerFunc) DisposeAsync(ctx context.Context) error { return f(ctx) }

var (
	// ErrNotDisposable is returned when a registered value has no
	// disposal method.
	ErrNotDisposable = errors.New("object is not disposable")
	// ErrNeedsAwait is returned when a scope holding async resources is
	// disposed synchronously.
	ErrNeedsAwait = errors.New("scope holds async resources and must be disposed asynchronously")
)

// SuppressedError records a disposal failure that happened while an
// earlier error was already propagating. Err is the newer failure and the
// one surfaced; Suppressed is the error it displaced.
type SuppressedError struct {
	Err        error
	Suppressed error
}

func (e *SuppressedError) Error() string {
	return fmt.Sprintf("%v (suppressed: %v)", e.Err, e.Suppressed)
}

func (e *SuppressedError) Unwrap() []error { return []error{e.Err, e.Suppressed} }

// record is one registered resource. dispose is nil for an awaited
// null resource, which only forces the scope to settle asynchronously.
type record struct {
	dispose func(context.Context) error
	async   bool
}

// Stack is the explicit disposal stack of the stack call shape.
type Stack struct {
	records []record
}

// Len returns the number of registered resources.
func (s *Stack) Len() int { return len(s.records) }

// Using registers v on the stack, mirroring using(stack, value, isAsync).
// A nil value is accepted and registers nothing unless async is set.
func Using(s *Stack, v any, async bool) error {
	if v == nil {
		if async {
			s.records = append(s.records, record{async: true})
		}
		return nil
	}
	if async {
		if d, ok := v.(AsyncDisposer); ok {
			s.records = append(s.records, record{dispose: d.DisposeAsync, async: true})
			return nil
		}
	}
	d, ok := v.(Disposer)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotDisposable, v)
	}
	s.records = append(s.records, record{
		dispose: func(context.Context) error { return d.Dispose() },
		async:   async,
	})
	return nil
}

// DisposeStack disposes every resource on s in reverse registration
// order, mirroring dispose(stack, error, hasError). Disposal never stops
// early: each failure replaces the propagating error and keeps the
// previous one as its suppressed companion. The stack is empty afterwards.
//
// ctx is handed to async disposers; cancellation does not interrupt
// disposal once it has started.
func DisposeStack(ctx context.Context, s *Stack, err error, hasErr bool) error {
	for len(s.records) > 0 {
		r := s.records[len(s.records)-1]
		s.records = s.records[:len(s.records)-1]
		if r.dispose == nil {
			continue
		}
		if derr := r.dispose(ctx); derr != nil {
			if hasErr {
				err = &SuppressedError{Err: derr, Suppressed: err}
			} else {
				err = derr
			}
			hasErr = true
		}
	}
	if hasErr {
		return err
	}
	return nil
}

// Context models the object returned by the usingCtx helper: one per
// disposal scope, shared by every resource declared directly in it.
type Context struct {
	stack  Stack
	err    error
	hasErr bool
	async  bool
}

// NewContext returns an empty disposal context.
func NewContext() *Context { return &Context{} }

// Use registers a sync resource (the u method).
func (c *Context) Use(v any) error { return Using(&c.stack, v, false) }

// UseAsync registers an async resource (the a method). Values that only
// implement Disposer are accepted and disposed synchronously.
func (c *Context) UseAsync(v any) error {
	if err := Using(&c.stack, v, true); err != nil {
		return err
	}
	c.async = true
	return nil
}

// SetError records the error thrown by the protected region (the e slot).
func (c *Context) SetError(err error) {
	c.err = err
	c.hasErr = true
}

// NeedsAwait reports whether disposal must be awaited because an async
// resource was registered.
func (c *Context) NeedsAwait() bool { return c.async }

// Len returns the number of registered resources.
func (c *Context) Len() int { return c.stack.Len() }

// Dispose disposes all resources in reverse order (the d method) and
// returns the region's error aggregated with any disposal failures.
func (c *Context) Dispose(ctx context.Context) error {
	return DisposeStack(ctx, &c.stack, c.err, c.hasErr)
}

// DisposeSync is Dispose for scopes that never suspend. It refuses to run
// when an async resource was registered.
func (c *Context) DisposeSync() error {
	if c.async {
		return ErrNeedsAwait
	}
	return c.Dispose(context.Background())
}

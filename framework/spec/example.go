package spec

import (
	"fmt"

	"github.com/launchdarkly/speccheck/framework"
)

const subjectName = "subject"

// E is the view of the running example that thunks, hooks and bodies receive.
//
// It implements the same basic functionality as Go's testing.T, so it can be passed to the
// assert and require packages. A failed assertion from require, or a call to FailNow, stops
// the example immediately. It also gives access to the bindings visible from the example's
// scope.
type E struct {
	context *framework.Context
	example *example
	cache   *cache
}

// Errorf is called by assertions to log a failure. It does not cause an immediate exit.
func (e *E) Errorf(format string, args ...interface{}) {
	e.context.Errorf(format, args...)
}

// FailNow is called by assertions when the example should fail and immediately exit.
func (e *E) FailNow() {
	e.context.FailNow()
}

func (e *E) Helper() {}

func (e *E) Failed() bool {
	return e.context.Failed()
}

func (e *E) Skip() {
	e.context.Skip()
}

func (e *E) SkipWithReason(reason string) {
	e.context.SkipWithReason(reason)
}

// Defer registers a cleanup function. Cleanups run in reverse order after the body, even if
// the example failed.
func (e *E) Defer(fn func()) {
	e.context.Defer(fn)
}

// Debug adds a line of debug output, which is shown with the example's result if the test
// logger is configured to show it.
func (e *E) Debug(message string, args ...interface{}) {
	e.context.Debug(message, args...)
}

func (e *E) DebugLogger() framework.Logger {
	return e.context.DebugLogger()
}

func (e *E) ID() framework.TestID {
	return e.context.ID()
}

// Description is the example's own description, without the enclosing scopes.
func (e *E) Description() string {
	return e.example.description
}

// HasTag is true if the example was declared with the given tag.
func (e *E) HasTag(tag string) bool {
	return e.example.tags[tag]
}

// Get returns the value of a binding, computing it if this example has not used it yet.
// If no enclosing scope binds the name, the example ends with an UnresolvedBindingError.
func (e *E) Get(name string) interface{} {
	return e.cache.get(e, name)
}

// Subject returns the value of the binding declared with Subject.
func (e *E) Subject() interface{} {
	return e.Get(subjectName)
}

// Evaluated is true if the binding has already been computed for this example.
func (e *E) Evaluated(name string) bool {
	return e.cache.evaluated(name)
}

// Get returns a binding value converted to the expected type. A value of any other type is
// a programming error, and ends the example as errored.
func Get[T any](e *E, name string) T {
	value := e.Get(name)
	if value == nil {
		var zero T
		return zero
	}
	ret, ok := value.(T)
	if !ok {
		var zero T
		panic(fmt.Errorf("binding %q has type %T, not %T", name, value, zero))
	}
	return ret
}

package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Context is the state of a single running test. It is used similarly to *testing.T: it
// implements require.TestingT so that the assert and require packages can be used with it,
// and it can skip the test or register cleanup functions.
//
// A Context runs exactly once. Its status moves from StatusPending to StatusRunning to one
// of the terminal states, and never changes after that.
type Context struct {
	id          TestID
	debugLogger debugRecorder
	status      Status
	failed      bool
	errored     bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
	result      *TestResult
	lock        sync.Mutex
}

// NewContext creates a Context for a test that has not started yet.
func NewContext(id TestID) *Context {
	return &Context{id: id, status: StatusPending}
}

// Run executes the test and returns its result. The action can end the test early by
// calling FailNow or Skip; any other panic is recovered and recorded as an UnhandledError.
// Functions registered with Defer run afterward in reverse order, even if the action
// panicked.
//
// Calling Run again returns the same result without running anything.
func (c *Context) Run(action func(*Context)) TestResult {
	c.lock.Lock()
	if c.status.Terminal() {
		ret := *c.result
		c.lock.Unlock()
		return ret
	}
	c.status = StatusRunning
	c.lock.Unlock()

	startTime := time.Now()
	c.runProtected(action)
	for len(c.deferred) > 0 {
		last := c.deferred[len(c.deferred)-1]
		c.deferred = c.deferred[:len(c.deferred)-1]
		c.runProtected(func(*Context) { last() })
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	switch {
	case c.errored:
		c.status = StatusErrored
	case c.failed:
		c.status = StatusFailed
	case c.skipped:
		c.status = StatusSkipped
	default:
		c.status = StatusPassed
	}
	c.result = &TestResult{
		TestID:      c.id,
		Status:      c.status,
		Errors:      append([]error(nil), c.errors...),
		SkipReason:  c.skipReason,
		Duration:    time.Since(startTime),
		DebugOutput: c.debugLogger.log(),
	}
	return *c.result
}

func (c *Context) runProtected(action func(*Context)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		c.lock.Lock()
		defer c.lock.Unlock()
		if r == c {
			if !c.skipped && len(c.errors) == 0 {
				c.failed = true
				c.errors = append(c.errors, errors.New("test failed with no failure message"))
			}
			return
		}
		c.errored = true
		c.errors = append(c.errors, &UnhandledError{Value: r, Stack: string(debug.Stack())})
	}()

	action(c)
}

// SkippedResult is the result for a test that was excluded without being run.
func SkippedResult(id TestID, reason string) TestResult {
	return TestResult{TestID: id, Status: StatusSkipped, SkipReason: reason}
}

func (c *Context) ID() TestID {
	return c.id
}

// Status returns the current state of the test.
func (c *Context) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status
}

// Failed is true if an assertion has failed so far.
func (c *Context) Failed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.failed
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.failed = true
	c.errors = append(c.errors, &AssertionFailure{Message: reformatMessage(fmt.Sprintf(format, args...))})
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (c *Context) FailNow() {
	c.lock.Lock()
	c.failed = true
	c.lock.Unlock()
	panic(c)
}

// Helper exists so that testify can treat the Context like a *testing.T.
func (c *Context) Helper() {}

func (c *Context) Skip() {
	c.lock.Lock()
	c.skipped = true
	c.lock.Unlock()
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.lock.Lock()
	c.skipReason = reason
	c.lock.Unlock()
	c.Skip()
}

// Defer registers a function to be called when the test ends, whatever the outcome.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify prefixes its messages with a newline and indents every line with a tab.
func reformatMessage(message string) string {
	lines := strings.Split(strings.TrimLeft(message, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return strings.Join(lines, "\n")
}

package framework

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a single test.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
	StatusErrored
	StatusSkipped
)

var statusNames = map[Status]string{
	StatusPending: "pending",
	StatusRunning: "running",
	StatusPassed:  "passed",
	StatusFailed:  "failed",
	StatusErrored: "errored",
	StatusSkipped: "skipped",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal is true for the states a test can never leave.
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusErrored || s == StatusSkipped
}

// MarshalText lets reports show the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID      TestID
	Status      Status
	Errors      []error
	SkipReason  string
	Duration    time.Duration
	DebugOutput DebugLog
}

// Message returns the first recorded error message, or the skip reason for a skipped test.
func (r TestResult) Message() string {
	if len(r.Errors) != 0 {
		return r.Errors[0].Error()
	}
	return r.SkipReason
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns the number of tests that ended with the given status.
func (r Results) Count(status Status) int {
	n := 0
	for _, t := range r.Tests {
		if t.Status == status {
			n++
		}
	}
	return n
}

// Add appends a result, also recording it as a failure if it failed or errored.
func (r *Results) Add(result TestResult) {
	r.Tests = append(r.Tests, result)
	if result.Status == StatusFailed || result.Status == StatusErrored {
		r.Failures = append(r.Failures, result)
	}
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Plus returns a new TestID with one more path element. The receiver is not modified.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

package framework

import "fmt"

// AssertionFailure is recorded when an expectation did not hold, normally through a testify
// assertion calling Errorf. It marks the test as failed but does not stop it by itself.
type AssertionFailure struct {
	Message string
}

func (e *AssertionFailure) Error() string {
	return e.Message
}

// UnhandledError is recorded when test code panicked with something other than a failure
// signal from the test context.
type UnhandledError struct {
	Value interface{}
	Stack string
}

func (e *UnhandledError) Error() string {
	if e.Stack == "" {
		return fmt.Sprintf("unexpected panic in test: %+v", e.Value)
	}
	return fmt.Sprintf("unexpected panic in test: %+v\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *UnhandledError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

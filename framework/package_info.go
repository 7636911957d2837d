// Package framework contains the low-level implementation of test runner infrastructure
// that can be reused for different kinds of test suites.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing a
// piece of test logic to be associated with a test identifier and to accumulate
// success/failure results. A Context implements the interfaces required by the testify
// assert and require packages.
//
// 2. Every test produces exactly one TestResult, whose Status distinguishes an assertion
// failure (Failed) from anything else that went wrong (Errored).
//
// 3. Progress is reported through a TestLogger, and the whole run can be summarized with
// PrintResults or written out with WriteReport.
//
// The declarative layer that decides which tests exist and in what order they run lives in
// framework/spec.
package framework

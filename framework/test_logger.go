package framework

import "sync"

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, status Status, debugOutput DebugLog)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                          {}
func (n nullTestLogger) TestError(TestID, error)                     {}
func (n nullTestLogger) TestFinished(TestID, Status, DebugLog) {}
func (n nullTestLogger) TestSkipped(TestID, string)                  {}

// NullTestLogger returns a TestLogger that ignores everything.
func NullTestLogger() TestLogger { return nullTestLogger{} }

// Recorder accumulates results in the order they are recorded and passes each one on to
// a TestLogger.
type Recorder struct {
	testLogger TestLogger
	results    Results
	lock       sync.Mutex
}

func NewRecorder(testLogger TestLogger) *Recorder {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	return &Recorder{testLogger: testLogger}
}

// Started tells the TestLogger that a test is about to produce a result.
func (r *Recorder) Started(id TestID) {
	r.testLogger.TestStarted(id)
}

// Record stores a finished result and reports its errors and final status.
func (r *Recorder) Record(result TestResult) {
	r.lock.Lock()
	r.results.Add(result)
	r.lock.Unlock()

	for _, err := range result.Errors {
		r.testLogger.TestError(result.TestID, err)
	}
	if result.Status == StatusSkipped {
		r.testLogger.TestSkipped(result.TestID, result.SkipReason)
	} else {
		r.testLogger.TestFinished(result.TestID, result.Status, result.DebugOutput)
	}
}

func (r *Recorder) Results() Results {
	r.lock.Lock()
	defer r.lock.Unlock()
	return Results{
		Tests:    append([]TestResult(nil), r.results.Tests...),
		Failures: append([]TestResult(nil), r.results.Failures...),
	}
}

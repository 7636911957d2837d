package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/launchdarkly/speccheck/framework"
	"github.com/launchdarkly/speccheck/framework/spec"
	"github.com/launchdarkly/speccheck/sampleapp"
	"github.com/launchdarkly/speccheck/target"
	"github.com/launchdarkly/speccheck/widgetspecs"
)

var errTestsFailed = errors.New("some tests failed")

func newTarget(p commandParams, logger *slog.Logger, out io.Writer) (*target.Target, error) {
	debugLogger := framework.SlogLogger(logger)
	if p.serviceURL == "" {
		fmt.Fprintln(out, "Testing the built-in sample application")
		app := sampleapp.NewApp(sampleapp.NewStore(), logger)
		info := target.ServiceInfo{Description: "built-in sample application", Capabilities: sampleapp.Capabilities}
		return target.NewHandlerTarget(app, info, debugLogger), nil
	}
	return target.NewRemoteTarget(p.serviceURL, p.statusQueryTimeout, debugLogger, out)
}

func runTests(p commandParams, logger *slog.Logger, out io.Writer, program string) error {
	tgt, err := newTarget(p, logger, out)
	if err != nil {
		return fmt.Errorf("test target error: %w", err)
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, p.filters, p.focus, tgt.Info().Missing(widgetspecs.AllCapabilities))

	fmt.Fprintln(out, "Running test suite")
	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: p.debug || p.debugAll,
		DebugOutputOnSuccess: p.debugAll,
	}
	results, err := widgetspecs.RunTestSuite(widgetspecs.NewEnvironment(tgt), spec.RunOptions{
		Filter:     framework.All(p.filters.AsFilter, p.focus.AsFilter),
		TestLogger: testLogger,
		Parallel:   p.parallel,
	})
	if err != nil {
		return err
	}
	logger.Info("test run finished",
		"tests", len(results.Tests),
		"failures", len(results.Failures),
		"skipped", results.Count(framework.StatusSkipped))

	fmt.Fprintln(out)
	framework.PrintResults(out, results)

	if p.reportPath != "" {
		if err := framework.WriteReport(p.reportPath, results); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(out, "Report written to %s\n", p.reportPath)
	}

	if p.stopServiceAtEnd {
		fmt.Fprintln(out, "Stopping test service")
		if err := tgt.StopService(); err != nil {
			fmt.Fprintf(out, "Error when stopping test service: %s\n", err)
		}
	}

	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run only the failed tests again:")
		fmt.Fprintf(out, "  %s\n", rerunCommand(program, p, results.Failures))
		return errTestsFailed
	}
	return nil
}

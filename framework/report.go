package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// PrintResults writes a summary of a test run: each failure with its messages, followed by a
// table of counts per status.
func PrintResults(out io.Writer, results Results) {
	if len(results.Failures) != 0 {
		fmt.Fprintln(out, "FAILED TESTS:")
		for _, f := range results.Failures {
			fmt.Fprintf(out, "* %s (%s)\n", f.TestID, f.Status)
			for _, err := range f.Errors {
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
		}
		fmt.Fprintln(out)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Status", "Tests"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, s := range []Status{StatusPassed, StatusFailed, StatusErrored, StatusSkipped} {
		table.Append([]string{s.String(), strconv.Itoa(results.Count(s))})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(results.Tests))})
	table.Render()

	if results.OK() {
		fmt.Fprintln(out, "All tests passed")
	}
}

// Report is the machine-readable form of a test run.
type Report struct {
	RunID    string         `json:"runId" yaml:"runId"`
	Time     time.Time      `json:"time" yaml:"time"`
	OK       bool           `json:"ok" yaml:"ok"`
	Counts   map[string]int `json:"counts" yaml:"counts"`
	Tests    []ReportedTest `json:"tests" yaml:"tests"`
	Failures []string       `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type ReportedTest struct {
	ID         string   `json:"id" yaml:"id"`
	Status     Status   `json:"status" yaml:"status"`
	Messages   []string `json:"messages,omitempty" yaml:"messages,omitempty"`
	SkipReason string   `json:"skipReason,omitempty" yaml:"skipReason,omitempty"`
	DurationMS int64    `json:"durationMs" yaml:"durationMs"`
}

// NewReport builds a Report with a fresh run ID.
func NewReport(results Results) Report {
	r := Report{
		RunID:  uuid.New().String(),
		Time:   time.Now().UTC(),
		OK:     results.OK(),
		Counts: make(map[string]int),
	}
	for _, s := range []Status{StatusPassed, StatusFailed, StatusErrored, StatusSkipped} {
		r.Counts[s.String()] = results.Count(s)
	}
	for _, t := range results.Tests {
		rt := ReportedTest{
			ID:         t.TestID.String(),
			Status:     t.Status,
			SkipReason: t.SkipReason,
			DurationMS: t.Duration.Milliseconds(),
		}
		for _, err := range t.Errors {
			rt.Messages = append(rt.Messages, err.Error())
		}
		r.Tests = append(r.Tests, rt)
	}
	for _, f := range results.Failures {
		r.Failures = append(r.Failures, f.TestID.String())
	}
	return r
}

// WriteReport writes the results to a file as YAML if the file name ends in .yaml or .yml,
// or as JSON otherwise.
func WriteReport(path string, results Results) error {
	report := NewReport(results)
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	default:
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("could not serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write report to %s: %w", path, err)
	}
	return nil
}

package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/launchdarkly/speccheck/framework"
)

type commandParams struct {
	serviceURL         string
	filters            framework.RegexFilters
	focus              framework.GlobList
	parallel           int
	stopServiceAtEnd   bool
	debug              bool
	debugAll           bool
	reportPath         string
	statusQueryTimeout time.Duration
}

func configureRunFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()
	flags.String(urlKey, "", "base URL of the application to test (default: run the built-in sample app)")
	flags.StringArray(runKey, nil, "regex pattern(s) to select tests to run")
	flags.StringArray(skipKey, nil, "regex pattern(s) to select tests not to run")
	flags.StringArray(focusKey, nil, "glob pattern(s) on test IDs, such as \"widgets/MyModel/**\"")
	flags.IntP(parallelKey, "p", defaultParallel, "number of examples to run at once")
	flags.Bool(stopServiceAtEndKey, false, "tell the application to exit after the test run")
	flags.Bool(debugKey, false, "enable debug logging for failed tests")
	flags.Bool(debugAllKey, false, "enable debug logging for all tests")
	flags.String(reportKey, "", "write a JSON or YAML report to this file (chosen by extension)")
	flags.Duration(statusQueryTimeoutKey, defaultStatusQueryTimeout, "how long to wait for the application to start")
	flags.String("log-file", "", "write a debug log to this file")

	for _, name := range []string{
		urlKey, runKey, skipKey, focusKey, parallelKey, stopServiceAtEndKey,
		debugKey, debugAllKey, reportKey, statusQueryTimeoutKey,
	} {
		bindFlagToConfig(v, flags.Lookup(name), name)
	}
	bindFlagToConfig(v, flags.Lookup("log-file"), logFilenameKey)
}

// bindFlagToConfig wires a flag to a config key so config and env values feed the flag.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}

// readParams collects the run parameters after flags have been parsed.
func readParams(v *viper.Viper) (commandParams, error) {
	p := commandParams{
		serviceURL:         strings.TrimSpace(v.GetString(urlKey)),
		parallel:           v.GetInt(parallelKey),
		stopServiceAtEnd:   v.GetBool(stopServiceAtEndKey),
		debug:              v.GetBool(debugKey),
		debugAll:           v.GetBool(debugAllKey),
		reportPath:         v.GetString(reportKey),
		statusQueryTimeout: v.GetDuration(statusQueryTimeoutKey),
	}
	for _, pattern := range patterns(v, runKey) {
		if err := p.filters.MustMatch.Set(pattern); err != nil {
			return p, fmt.Errorf("--%s: %w", runKey, err)
		}
	}
	for _, pattern := range patterns(v, skipKey) {
		if err := p.filters.MustNotMatch.Set(pattern); err != nil {
			return p, fmt.Errorf("--%s: %w", skipKey, err)
		}
	}
	for _, pattern := range patterns(v, focusKey) {
		if err := p.focus.Set(pattern); err != nil {
			return p, fmt.Errorf("--%s: %w", focusKey, err)
		}
	}
	if p.parallel < 1 {
		return p, fmt.Errorf("--%s must be at least 1", parallelKey)
	}
	return p, nil
}

// patterns reads a list of filter patterns. Test IDs contain spaces, so a value that arrives
// as a single string, as environment variables do, is split on newlines only.
func patterns(v *viper.Viper, key string) []string {
	var ret []string
	switch value := v.Get(key).(type) {
	case nil:
	case string:
		for _, line := range strings.Split(value, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				ret = append(ret, line)
			}
		}
	case []string:
		ret = append(ret, value...)
	case []interface{}:
		for _, item := range value {
			ret = append(ret, fmt.Sprint(item))
		}
	default:
		ret = append(ret, fmt.Sprint(value))
	}
	return ret
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommand builds a command line that runs only the given tests again, with the same
// target.
func rerunCommand(program string, p commandParams, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program)
	if p.serviceURL != "" {
		b.add("--"+urlKey, p.serviceURL)
	}
	for _, f := range failures {
		b.add("--"+runKey, "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}

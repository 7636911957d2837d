package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// All combines filters so that a test runs only if every non-nil filter accepts it.
func All(filters ...Filter) Filter {
	return func(id TestID) bool {
		for _, f := range filters {
			if f != nil && !f(id) {
				return false
			}
		}
		return true
	}
}

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

// Type is used by pflag in help output.
func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// GlobList selects tests by their slash-separated ID, using doublestar patterns such as
// "widgets/**/as JSON/*".
type GlobList struct {
	patterns []string
}

func (g GlobList) String() string {
	var ss []string
	for _, p := range g.patterns {
		ss = append(ss, `"`+p+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (g *GlobList) Set(value string) error {
	if !doublestar.ValidatePattern(value) {
		return fmt.Errorf("invalid glob pattern: %q", value)
	}
	g.patterns = append(g.patterns, value)
	return nil
}

func (g *GlobList) Type() string {
	return "glob"
}

func (g GlobList) IsDefined() bool {
	return len(g.patterns) != 0
}

// AsFilter accepts every test if no patterns were given, otherwise only the tests whose ID
// matches at least one pattern.
func (g GlobList) AsFilter(id TestID) bool {
	if !g.IsDefined() {
		return true
	}
	name := id.String()
	for _, p := range g.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func PrintFilterDescription(out io.Writer, filters RegexFilters, focus GlobList, missingCapabilities []string) {
	if filters.IsDefined() || focus.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		if focus.IsDefined() {
			fmt.Fprintf(out, "  skip any outside of %s\n", focus)
		}
		fmt.Fprintln(out)
	}

	if len(missingCapabilities) > 0 {
		fmt.Fprintln(out, "Some tests may be skipped because the test target does not support the following capabilities:")
		fmt.Fprintf(out, "  %s\n", strings.Join(missingCapabilities, ", "))
		fmt.Fprintln(out)
	}
}

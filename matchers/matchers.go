// Package matchers contains assertions for HTTP responses from the application under test,
// built on the testify assert package. Like the assert functions, they accept anything that
// implements assert.TestingT, report a failure through it, and return false on failure.
package matchers

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/speccheck/target"
)

type tHelper interface {
	Helper()
}

func helper(t assert.TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// Status checks the response status code.
func Status(t assert.TestingT, expected int, resp *target.Response, msgAndArgs ...interface{}) bool {
	helper(t)
	if resp.Status == expected {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("expected status %d %s, got %d %s",
		expected, http.StatusText(expected), resp.Status, http.StatusText(resp.Status)), msgAndArgs...)
}

// ContentType checks the media type of the response. Only the type and subtype are compared,
// case-insensitively; parameters such as charset are ignored on both sides, so "text/html"
// matches "text/html; charset=utf-8".
func ContentType(t assert.TestingT, expected string, resp *target.Response, msgAndArgs ...interface{}) bool {
	helper(t)
	want := strings.ToLower(strings.TrimSpace(expected))
	if mediaType, _, err := mime.ParseMediaType(expected); err == nil {
		want = mediaType
	}
	if got := resp.ContentType(); got != want {
		return assert.Fail(t, fmt.Sprintf("expected content type %q, got %q", want, got), msgAndArgs...)
	}
	return true
}

type selectorOptions struct {
	count ldvalue.OptionalInt
}

// SelectorOption refines HasSelector.
type SelectorOption func(*selectorOptions)

// Count requires an exact number of matching elements rather than at least one.
func Count(n int) SelectorOption {
	return func(o *selectorOptions) {
		o.count = ldvalue.NewOptionalInt(n)
	}
}

func findAll(t assert.TestingT, body []byte, selector string) (*goquery.Selection, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, assert.Fail(t, fmt.Sprintf("response body is not valid HTML: %s", err))
	}
	return doc.Find(selector), true
}

// HasSelector checks that an HTML body contains an element matching a CSS selector.
func HasSelector(t assert.TestingT, body []byte, selector string, options ...SelectorOption) bool {
	helper(t)
	var opts selectorOptions
	for _, o := range options {
		o(&opts)
	}
	found, ok := findAll(t, body, selector)
	if !ok {
		return false
	}
	if expected, defined := opts.count.Get(); defined {
		if found.Length() != expected {
			return assert.Fail(t, fmt.Sprintf("expected %d element(s) matching %q, found %d", expected, selector, found.Length()))
		}
		return true
	}
	if found.Length() == 0 {
		return assert.Fail(t, fmt.Sprintf("expected an element matching %q, found none", selector))
	}
	return true
}

// NoSelector checks that no element of an HTML body matches a CSS selector.
func NoSelector(t assert.TestingT, body []byte, selector string) bool {
	helper(t)
	found, ok := findAll(t, body, selector)
	if !ok {
		return false
	}
	if found.Length() != 0 {
		return assert.Fail(t, fmt.Sprintf("expected no element matching %q, found %d", selector, found.Length()))
	}
	return true
}

// JSONLength checks the number of elements of a JSON array or properties of a JSON object.
func JSONLength(t assert.TestingT, expected int, value ldvalue.Value, msgAndArgs ...interface{}) bool {
	helper(t)
	switch value.Type() {
	case ldvalue.ArrayType, ldvalue.ObjectType:
		if value.Count() != expected {
			return assert.Fail(t, fmt.Sprintf("expected %d element(s), got %d: %s", expected, value.Count(), value.JSONString()),
				msgAndArgs...)
		}
		return true
	}
	return assert.Fail(t, fmt.Sprintf("expected a JSON array or object, got %s", value.JSONString()), msgAndArgs...)
}

// JSONEqual compares two JSON values deeply.
func JSONEqual(t assert.TestingT, expected, actual ldvalue.Value, msgAndArgs ...interface{}) bool {
	helper(t)
	if expected.Equal(actual) {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("JSON values differ\nexpected: %s\nactual:   %s", expected.JSONString(), actual.JSONString()),
		msgAndArgs...)
}

// RendersTemplate checks which view produced an HTML response. The application names the
// template in the data-template attribute of the body element.
func RendersTemplate(t assert.TestingT, name string, resp *target.Response, msgAndArgs ...interface{}) bool {
	helper(t)
	found, ok := findAll(t, resp.Body, "body")
	if !ok {
		return false
	}
	if got := found.AttrOr("data-template", ""); got != name {
		return assert.Fail(t, fmt.Sprintf("expected template %q to be rendered, got %q", name, got), msgAndArgs...)
	}
	return true
}

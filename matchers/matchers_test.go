package matchers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/speccheck/target"
)

type recordingT struct {
	failures []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func response(status int, contentType string, body string) *target.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &target.Response{Status: status, Header: h, Body: []byte(body)}
}

const resultsPage = `<html><body>
<div class="result" id="result_1">yes</div>
<div class="result" id="result_3">yes again</div>
</body></html>`

func TestStatus(t *testing.T) {
	rt := &recordingT{}
	assert.True(t, Status(rt, 200, response(200, "", "")))
	assert.False(t, Status(rt, 201, response(422, "", "")))
	assert.Len(t, rt.failures, 1)
	assert.Contains(t, rt.failures[0], "expected status 201 Created, got 422 Unprocessable Entity")
}

func TestContentTypeIgnoresParameters(t *testing.T) {
	rt := &recordingT{}
	assert.True(t, ContentType(rt, "text/html", response(200, "text/html; charset=utf-8", "")))
	assert.True(t, ContentType(rt, "Application/JSON", response(200, "application/json", "")))
	assert.False(t, ContentType(rt, "application/json", response(200, "text/html", "")))
	assert.False(t, ContentType(rt, "text/html", response(200, "", "")))
	assert.Len(t, rt.failures, 2)
}

func TestHasSelector(t *testing.T) {
	rt := &recordingT{}
	body := []byte(resultsPage)
	assert.True(t, HasSelector(rt, body, ".result"))
	assert.True(t, HasSelector(rt, body, ".result", Count(2)))
	assert.True(t, HasSelector(rt, body, "#result_3"))
	assert.Empty(t, rt.failures)

	assert.False(t, HasSelector(rt, body, ".result", Count(1)))
	assert.False(t, HasSelector(rt, body, "#result_2"))
	assert.Len(t, rt.failures, 2)
	assert.Contains(t, rt.failures[0], "expected 1 element(s) matching \".result\", found 2")
}

func TestNoSelector(t *testing.T) {
	rt := &recordingT{}
	body := []byte(resultsPage)
	assert.True(t, NoSelector(rt, body, "#result_2"))
	assert.False(t, NoSelector(rt, body, "#result_1"))
	assert.Len(t, rt.failures, 1)
}

func TestJSONLength(t *testing.T) {
	rt := &recordingT{}
	results := ldvalue.Parse([]byte(`{"results":[{"id":1},{"id":2}]}`)).GetByKey("results")
	assert.True(t, JSONLength(rt, 2, results))
	assert.False(t, JSONLength(rt, 1, results))
	assert.False(t, JSONLength(rt, 0, ldvalue.String("x")))
	assert.Len(t, rt.failures, 2)
}

func TestJSONEqual(t *testing.T) {
	rt := &recordingT{}
	a := ldvalue.Parse([]byte(`{"name":"yes","id":1}`))
	b := ldvalue.Parse([]byte(`{"id":1,"name":"yes"}`))
	assert.True(t, JSONEqual(rt, a, b))
	assert.False(t, JSONEqual(rt, a, ldvalue.Null()))
	assert.Len(t, rt.failures, 1)
}

func TestRendersTemplate(t *testing.T) {
	rt := &recordingT{}
	resp := response(200, "text/html", `<html><body data-template="widgets/show"><p>hi</p></body></html>`)
	assert.True(t, RendersTemplate(rt, "widgets/show", resp))
	assert.Empty(t, rt.failures)

	assert.False(t, RendersTemplate(rt, "widgets/new", resp))
	require.Len(t, rt.failures, 1)
	assert.Contains(t, rt.failures[0], `expected template "widgets/new" to be rendered, got "widgets/show"`)
}

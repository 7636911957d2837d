package widgetspecs

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/speccheck/factory"
	"github.com/launchdarkly/speccheck/framework/spec"
	"github.com/launchdarkly/speccheck/sampleapp"
	"github.com/launchdarkly/speccheck/target"
)

const (
	capabilityHTML = "html"
	capabilityJSON = "json"

	responseName = "response"
)

// AllCapabilities is every capability that some spec in this package may require.
var AllCapabilities = []string{capabilityHTML, capabilityJSON}

// Environment is what the specs need from the outside world.
type Environment struct {
	Target *target.Target

	widgets *factory.Factory[sampleapp.Widget]
	results *factory.Factory[sampleapp.Result]
}

// NewEnvironment creates an Environment whose factories save records through the target.
func NewEnvironment(t *target.Target) *Environment {
	env := &Environment{Target: t}
	env.widgets = factory.New(func(n int) sampleapp.Widget {
		return sampleapp.Widget{Name: fmt.Sprintf("widget %d", n), Feature: fmt.Sprintf("feature %d", n)}
	}).WithPersist(env.postWidget)
	env.results = factory.New(func(n int) sampleapp.Result {
		return sampleapp.Result{Name: fmt.Sprintf("result %d", n)}
	}).WithPersist(env.postResult)
	return env
}

// requireCapability returns a setup hook that skips the example if the target does not have
// the given capability.
func (env *Environment) requireCapability(capability string) spec.Hook {
	return func(e *spec.E) {
		if !env.Target.HasCapability(capability) {
			e.SkipWithReason(fmt.Sprintf("target does not have capability %q", capability))
		}
	}
}

func widgetParams(w sampleapp.Widget) url.Values {
	return url.Values{"widget[name]": {w.Name}, "widget[feature]": {w.Feature}}
}

// postWidget saves a widget through the HTML form, reading the new id from the element id
// of the page it renders.
func (env *Environment) postWidget(w sampleapp.Widget) (sampleapp.Widget, error) {
	resp, err := env.Target.Post("/widgets", target.Params(widgetParams(w)))
	if err != nil {
		return w, err
	}
	if resp.Status != http.StatusCreated {
		return w, fmt.Errorf("creating widget returned HTTP %d", resp.Status)
	}
	doc, err := resp.Document()
	if err != nil {
		return w, err
	}
	elementID := doc.Find(".widget").AttrOr("id", "")
	id, err := strconv.Atoi(strings.TrimPrefix(elementID, "widget_"))
	if err != nil {
		return w, fmt.Errorf("created widget page has no valid widget id (%q)", elementID)
	}
	w.ID = id
	return w, nil
}

func (env *Environment) postResult(r sampleapp.Result) (sampleapp.Result, error) {
	resp, err := env.Target.Post("/results", target.Params(url.Values{"result[name]": {r.Name}}))
	if err != nil {
		return r, err
	}
	if resp.Status != http.StatusCreated {
		return r, fmt.Errorf("creating result returned HTTP %d", resp.Status)
	}
	id := resp.JSON().GetByKey("result").GetByKey("id")
	if !id.IsInt() {
		return r, fmt.Errorf("created result has no valid id: %s", resp.Body)
	}
	r.ID = id.IntValue()
	return r, nil
}

// create saves a record with a factory, failing the example on an error.
func create[T any](e *spec.E, f *factory.Factory[T], overrides ...func(*T)) T {
	value, err := f.Create(overrides...)
	require.NoError(e, err)
	return value
}

func createList[T any](e *spec.E, f *factory.Factory[T], count int, overrides ...func(*T)) []T {
	values, err := f.CreateList(count, overrides...)
	require.NoError(e, err)
	return values
}

// request returns a thunk for the "response" binding that sends a request when it is first
// used. A setup hook made by sendRequest forces it, like a request made in a before block.
func request(env *Environment, method, path string, options func(e *spec.E) []target.RequestOption) spec.Thunk {
	return func(e *spec.E) interface{} {
		var opts []target.RequestOption
		if options != nil {
			opts = options(e)
		}
		resp, err := env.Target.Do(method, path, opts...)
		require.NoError(e, err)
		e.Debug("%s %s returned %d", method, path, resp.Status)
		return resp
	}
}

func sendRequest(e *spec.E) {
	e.Get(responseName)
}

func response(e *spec.E) *target.Response {
	return spec.Get[*target.Response](e, responseName)
}

package widgetspecs

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/speccheck/framework/spec"
	"github.com/launchdarkly/speccheck/matchers"
	"github.com/launchdarkly/speccheck/sampleapp"
	"github.com/launchdarkly/speccheck/target"
)

func result(e *spec.E, name string) sampleapp.Result {
	return spec.Get[sampleapp.Result](e, name)
}

// DoSearchRequestTests declares the specs for the search page. Each example searches for a
// term of its own, so that records left over from other examples never match.
func DoSearchRequestTests(d *spec.DSL, env *Environment) {
	d.Describe("GET /search", func(d *spec.DSL) {
		d.Let("query", func(e *spec.E) interface{} { return "yes-" + uuid.NewString() })
		searchParams := func(e *spec.E) target.RequestOption {
			return target.Params(url.Values{"query": {spec.Get[string](e, "query")}})
		}
		d.LetBang("result", func(e *spec.E) interface{} {
			return create(e, env.results, func(r *sampleapp.Result) { r.Name = spec.Get[string](e, "query") })
		})
		d.LetBang("nope", func(e *spec.E) interface{} {
			return create(e, env.results, func(r *sampleapp.Result) { r.Name = "nope" })
		})

		d.Context("as HTML", func(d *spec.DSL) {
			d.Let(responseName, request(env, http.MethodGet, "/search", func(e *spec.E) []target.RequestOption {
				return []target.RequestOption{searchParams(e)}
			}))
			d.Before(env.requireCapability(capabilityHTML))
			d.Before(sendRequest)

			d.It("", func(e *spec.E) { matchers.Status(e, http.StatusOK, response(e)) })
			d.It("", func(e *spec.E) { matchers.ContentType(e, "text/html", response(e)) })
			d.It("", func(e *spec.E) { matchers.HasSelector(e, response(e).Body, ".result", matchers.Count(1)) })
			d.It("", func(e *spec.E) {
				matchers.HasSelector(e, response(e).Body, fmt.Sprintf("#result_%d", result(e, "result").ID))
			})
			d.It("", func(e *spec.E) {
				matchers.NoSelector(e, response(e).Body, fmt.Sprintf("#result_%d", result(e, "nope").ID))
			})
		})

		d.Context("as JSON", func(d *spec.DSL) {
			d.Let(responseName, request(env, http.MethodGet, "/search", func(e *spec.E) []target.RequestOption {
				return []target.RequestOption{searchParams(e), target.Format("json")}
			}))
			d.Let("results", func(e *spec.E) interface{} { return response(e).JSON().GetByKey("results") })
			d.Before(env.requireCapability(capabilityJSON))
			d.Before(sendRequest)

			results := func(e *spec.E) ldvalue.Value { return spec.Get[ldvalue.Value](e, "results") }

			d.It("", func(e *spec.E) { matchers.Status(e, http.StatusOK, response(e)) })
			d.It("", func(e *spec.E) { matchers.ContentType(e, "application/json", response(e)) })
			d.It("", func(e *spec.E) { matchers.JSONLength(e, 1, results(e)) })
			d.It("", func(e *spec.E) {
				require.True(e, results(e).Count() > 0, "no results")
				assert.Equal(e, result(e, "result").Name, results(e).GetByIndex(0).GetByKey("name").StringValue())
			})
			d.It("does not show an irrelevant result", func(e *spec.E) {
				nope := result(e, "nope")
				for i := 0; i < results(e).Count(); i++ {
					assert.NotEqual(e, nope.ID, results(e).GetByIndex(i).GetByKey("id").IntValue())
				}
			})
		})
	})
}

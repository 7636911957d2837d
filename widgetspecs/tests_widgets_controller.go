package widgetspecs

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/speccheck/framework/spec"
	"github.com/launchdarkly/speccheck/matchers"
	"github.com/launchdarkly/speccheck/sampleapp"
	"github.com/launchdarkly/speccheck/target"
)

func widget(e *spec.E) sampleapp.Widget {
	return spec.Get[sampleapp.Widget](e, "widget")
}

// findWidgetJSON returns the element of a JSON widget list with the given id, or null.
func findWidgetJSON(list ldvalue.Value, id int) ldvalue.Value {
	for i := 0; i < list.Count(); i++ {
		if item := list.GetByIndex(i); item.GetByKey("id").IntValue() == id {
			return item
		}
	}
	return ldvalue.Null()
}

// DoWidgetControllerTests declares the specs for listing and creating widgets.
func DoWidgetControllerTests(d *spec.DSL, env *Environment) {
	d.Describe("GET #index", func(d *spec.DSL) {
		d.LetBang("widget", func(e *spec.E) interface{} { return create(e, env.widgets) })

		d.Context("as HTML", func(d *spec.DSL) {
			d.Let(responseName, request(env, http.MethodGet, "/widgets", nil))
			d.Before(env.requireCapability(capabilityHTML))
			d.Before(sendRequest)

			d.It("", func(e *spec.E) { matchers.Status(e, http.StatusOK, response(e)) })
			d.It("", func(e *spec.E) { matchers.ContentType(e, "text/html", response(e)) })
			d.It("", func(e *spec.E) { matchers.RendersTemplate(e, "widgets/index", response(e)) })
			d.It("includes the widget", func(e *spec.E) {
				matchers.HasSelector(e, response(e).Body, fmt.Sprintf("#widget_%d", widget(e).ID))
			})
		})

		d.Context("as JSON", func(d *spec.DSL) {
			d.Let(responseName, request(env, http.MethodGet, "/widgets", jsonFormat))
			d.Before(env.requireCapability(capabilityJSON))
			d.Before(sendRequest)

			d.It("", func(e *spec.E) { matchers.Status(e, http.StatusOK, response(e)) })
			d.It("", func(e *spec.E) { matchers.ContentType(e, "application/json", response(e)) })
			d.It("includes the widget", func(e *spec.E) {
				w := widget(e)
				found := findWidgetJSON(response(e).JSON().GetByKey("widgets"), w.ID)
				require.False(e, found.IsNull(), "widget %d not in list", w.ID)
				assert.Equal(e, w.Name, found.GetByKey("name").StringValue())
			})
		})
	})

	d.Describe("POST #create", func(d *spec.DSL) {
		postWidget := func(format func(e *spec.E) []target.RequestOption) spec.Thunk {
			return request(env, http.MethodPost, "/widgets", func(e *spec.E) []target.RequestOption {
				opts := []target.RequestOption{target.Params(widgetParams(widget(e)))}
				if format != nil {
					opts = append(opts, format(e)...)
				}
				return opts
			})
		}
		validAttributes := func(e *spec.E) interface{} { return env.widgets.AttributesFor() }
		invalidAttributes := func(e *spec.E) interface{} {
			return env.widgets.AttributesFor(func(w *sampleapp.Widget) { w.Name = "" })
		}

		d.Context("as HTML", func(d *spec.DSL) {
			d.Let(responseName, postWidget(nil))
			d.Before(env.requireCapability(capabilityHTML))
			d.Before(sendRequest)

			d.Context("with proper params", func(d *spec.DSL) {
				d.Let("widget", validAttributes)

				d.It("", func(e *spec.E) { matchers.Status(e, http.StatusCreated, response(e)) })
				d.It("", func(e *spec.E) { matchers.ContentType(e, "text/html", response(e)) })
				d.It("", func(e *spec.E) {
					matchers.HasSelector(e, response(e).Body, ".widget .name")
					doc, err := response(e).Document()
					require.NoError(e, err)
					assert.Equal(e, widget(e).Name, doc.Find(".widget .name").Text())
				})
				d.It("is persisted", func(e *spec.E) {
					matchers.HasSelector(e, response(e).Body, `.widget[id^="widget_"]`, matchers.Count(1))
					matchers.NoSelector(e, response(e).Body, "#widget_0")
				})
				d.It("", func(e *spec.E) { matchers.RendersTemplate(e, "widgets/show", response(e)) })
			})

			d.Context("with invalid params", func(d *spec.DSL) {
				d.Let("widget", invalidAttributes)

				d.It("", func(e *spec.E) { matchers.Status(e, http.StatusUnprocessableEntity, response(e)) })
				d.It("", func(e *spec.E) { matchers.ContentType(e, "text/html", response(e)) })
				d.It("is not persisted", func(e *spec.E) {
					matchers.NoSelector(e, response(e).Body, `.widget[id^="widget_"]`)
				})
				d.It("keeps the params to refill the form", func(e *spec.E) {
					doc, err := response(e).Document()
					require.NoError(e, err)
					assert.Equal(e, widget(e).Feature, doc.Find(`input[name="widget[feature]"]`).AttrOr("value", ""))
				})
				d.It("", func(e *spec.E) { matchers.RendersTemplate(e, "widgets/new", response(e)) })
			})
		})

		d.Context("as JSON", func(d *spec.DSL) {
			d.Let(responseName, postWidget(jsonFormat))
			d.Let("json", func(e *spec.E) interface{} { return response(e).JSON().GetByKey("widget") })
			d.Before(env.requireCapability(capabilityJSON))
			d.Before(sendRequest)

			d.Context("with proper params", func(d *spec.DSL) {
				d.Let("widget", validAttributes)

				d.It("", func(e *spec.E) { matchers.Status(e, http.StatusCreated, response(e)) })
				d.It("", func(e *spec.E) { matchers.ContentType(e, "application/json", response(e)) })
				d.It("", func(e *spec.E) {
					assert.Equal(e, widget(e).Name, spec.Get[ldvalue.Value](e, "json").GetByKey("name").StringValue())
				})
				d.It("is persisted", func(e *spec.E) {
					assert.True(e, spec.Get[ldvalue.Value](e, "json").GetByKey("id").IsInt())
				})
			})

			d.Context("with invalid params", func(d *spec.DSL) {
				d.Let("widget", invalidAttributes)

				d.It("", func(e *spec.E) { matchers.Status(e, http.StatusUnprocessableEntity, response(e)) })
				d.It("", func(e *spec.E) { matchers.ContentType(e, "application/json", response(e)) })
				d.It("is not persisted", func(e *spec.E) {
					assert.True(e, spec.Get[ldvalue.Value](e, "json").GetByKey("id").IsNull())
				})
				d.It("keeps the params to refill the form", func(e *spec.E) {
					assert.Equal(e, widget(e).Feature, spec.Get[ldvalue.Value](e, "json").GetByKey("feature").StringValue())
				})
			})
		})
	})
}

func jsonFormat(*spec.E) []target.RequestOption {
	return []target.RequestOption{target.Format("json")}
}

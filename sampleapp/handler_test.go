package sampleapp

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestStatusResource(t *testing.T) {
	app := NewApp(NewStore(), nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	value := ldvalue.Parse(rec.Body.Bytes())
	assert.Equal(t, description, value.GetByKey("description").StringValue())
	assert.Equal(t, ldvalue.ArrayOf(ldvalue.String("html"), ldvalue.String("json")), value.GetByKey("capabilities"))

	rec = serve(app, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateWidgetHTML(t *testing.T) {
	app := NewApp(NewStore(), nil)

	rec := serve(app, postForm("/widgets", url.Values{"widget[name]": {"sprocket"}, "widget[feature]": {"teeth"}}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, contentTypeHTML, rec.Header().Get("Content-Type"))
	doc := parseHTML(t, rec)
	assert.Equal(t, "widgets/show", doc.Find("body").AttrOr("data-template", ""))
	assert.Equal(t, "sprocket", doc.Find(".widget .name").Text())
	assert.Len(t, app.Store().Widgets(), 1)
}

func TestCreateInvalidWidgetHTML(t *testing.T) {
	app := NewApp(NewStore(), nil)

	rec := serve(app, postForm("/widgets", url.Values{"widget[feature]": {"teeth"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "widgets/new", doc.Find("body").AttrOr("data-template", ""))
	assert.Equal(t, "teeth", doc.Find(`input[name="widget[feature]"]`).AttrOr("value", ""))
	assert.Equal(t, 1, doc.Find(".errors .error").Length())
	assert.Len(t, app.Store().Widgets(), 0)
}

func TestCreateWidgetJSON(t *testing.T) {
	app := NewApp(NewStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/widgets.json",
		strings.NewReader(`{"widget":{"name":"sprocket","feature":"teeth"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(app, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
	widget := ldvalue.Parse(rec.Body.Bytes()).GetByKey("widget")
	assert.Equal(t, "sprocket", widget.GetByKey("name").StringValue())
	assert.True(t, widget.GetByKey("id").IsInt())

	rec = serve(app, postForm("/widgets.json", url.Values{"widget[feature]": {"teeth"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	value := ldvalue.Parse(rec.Body.Bytes())
	assert.True(t, value.GetByKey("widget").GetByKey("id").IsNull())
	assert.Equal(t, ldvalue.ArrayOf(ldvalue.String("name can't be blank")), value.GetByKey("errors"))
}

func TestFormatFromAcceptHeader(t *testing.T) {
	app := NewApp(NewStore(), nil)
	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Accept", "application/json, text/plain")
	rec := serve(app, req)
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, ldvalue.Parse(rec.Body.Bytes()).GetByKey("widgets").Count())
}

func TestSearchHTMLAndJSON(t *testing.T) {
	store := NewStore()
	for _, name := range []string{"sprocket", "big sprocket", "gear"} {
		_, err := store.CreateResult(Result{Name: name})
		require.NoError(t, err)
	}
	app := NewApp(store, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/search?query=sprocket", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 2, doc.Find(".result").Length())
	assert.Equal(t, 1, doc.Find("#result_1").Length())

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/search.json?query=gear", nil))
	results := ldvalue.Parse(rec.Body.Bytes()).GetByKey("results")
	require.Equal(t, 1, results.Count())
	assert.Equal(t, "gear", results.GetByIndex(0).GetByKey("name").StringValue())
}

func TestUnknownRoutes(t *testing.T) {
	app := NewApp(NewStore(), nil)
	assert.Equal(t, http.StatusNotFound, serve(app, httptest.NewRequest(http.MethodGet, "/nothing", nil)).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(app, httptest.NewRequest(http.MethodPut, "/widgets", nil)).Code)
}

func TestCreateResult(t *testing.T) {
	app := NewApp(NewStore(), nil)

	rec := serve(app, postForm("/results", url.Values{"result[name]": {"yes"}}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	result := ldvalue.Parse(rec.Body.Bytes()).GetByKey("result")
	assert.Equal(t, "yes", result.GetByKey("name").StringValue())
	assert.Len(t, app.Store().Search("yes"), 1)

	req := httptest.NewRequest(http.MethodPost, "/results.json", strings.NewReader(`{"result":{"name":""}}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(app, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

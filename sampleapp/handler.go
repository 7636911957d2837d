package sampleapp

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	formatHTML = "html"
	formatJSON = "json"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

// Capabilities lists the response formats the application can produce.
var Capabilities = []string{formatHTML, formatJSON}

const description = "speccheck sample application"

// App serves the sample application over HTTP.
type App struct {
	store  *Store
	logger *slog.Logger
}

// NewApp creates an App backed by a store. A nil logger discards log output.
func NewApp(store *Store, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{store: store, logger: logger}
}

func (a *App) Store() *Store {
	return a.store
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, format := splitFormat(r)
	a.logger.Debug("request", "method", r.Method, "path", path, "format", format)

	switch {
	case path == "/" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, ldvalue.ObjectBuild().
			Set("description", ldvalue.String(description)).
			Set("capabilities", stringArray(Capabilities)).
			Build())
	case path == "/" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case path == "/widgets" && r.Method == http.MethodGet:
		a.widgetsIndex(w, format)
	case path == "/widgets" && r.Method == http.MethodPost:
		a.widgetsCreate(w, r, format)
	case path == "/search" && r.Method == http.MethodGet:
		a.search(w, r, format)
	case path == "/results" && r.Method == http.MethodPost:
		a.resultsCreate(w, r)
	case path == "/widgets" || path == "/search" || path == "/results" || path == "/":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// splitFormat removes a ".json" or ".html" extension from the path. Without one, the format
// comes from the Accept header, defaulting to HTML.
func splitFormat(r *http.Request) (string, string) {
	path := r.URL.Path
	for _, f := range Capabilities {
		if strings.HasSuffix(path, "."+f) {
			return strings.TrimSuffix(path, "."+f), f
		}
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		if mediaType, _, err := mime.ParseMediaType(strings.Split(accept, ",")[0]); err == nil && mediaType == contentTypeJSON {
			return path, formatJSON
		}
	}
	return path, formatHTML
}

func (a *App) widgetsIndex(w http.ResponseWriter, format string) {
	widgets := a.store.Widgets()
	if format == formatJSON {
		list := ldvalue.ArrayBuild()
		for _, wd := range widgets {
			list.Add(widgetJSON(wd))
		}
		writeJSON(w, http.StatusOK, ldvalue.ObjectBuild().Set("widgets", list.Build()).Build())
		return
	}
	a.render(w, http.StatusOK, "widgets/index", widgets)
}

func (a *App) widgetsCreate(w http.ResponseWriter, r *http.Request, format string) {
	widget, err := readWidgetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := a.store.CreateWidget(widget)
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		a.logger.Info("widget rejected", "errors", invalid.Messages)
		if format == formatJSON {
			writeJSON(w, http.StatusUnprocessableEntity, ldvalue.ObjectBuild().
				Set("widget", widgetJSON(saved)).
				Set("errors", stringArray(invalid.Messages)).
				Build())
			return
		}
		a.render(w, http.StatusUnprocessableEntity, "widgets/new", widgetForm{Widget: saved, Errors: invalid.Messages})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		a.logger.Info("widget created", "id", saved.ID)
		if format == formatJSON {
			writeJSON(w, http.StatusCreated, ldvalue.ObjectBuild().Set("widget", widgetJSON(saved)).Build())
			return
		}
		a.render(w, http.StatusCreated, "widgets/show", saved)
	}
}

func (a *App) search(w http.ResponseWriter, r *http.Request, format string) {
	query := r.URL.Query().Get("query")
	results := a.store.Search(query)
	if format == formatJSON {
		list := ldvalue.ArrayBuild()
		for _, res := range results {
			list.Add(ldvalue.ObjectBuild().
				Set("id", ldvalue.Int(res.ID)).
				Set("name", ldvalue.String(res.Name)).
				Build())
		}
		writeJSON(w, http.StatusOK, ldvalue.ObjectBuild().
			Set("query", ldvalue.String(query)).
			Set("results", list.Build()).
			Build())
		return
	}
	a.render(w, http.StatusOK, "search/index", searchPage{Query: query, Results: results})
}

// resultsCreate adds a searchable record. It always answers in JSON, since it exists for
// seeding data rather than for browsing.
func (a *App) resultsCreate(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Result struct {
			Name string `json:"name"`
		} `json:"result"`
	}
	if err := readParams(r, &params, func(form url.Values) { params.Result.Name = form.Get("result[name]") }); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	saved, err := a.store.CreateResult(Result{Name: params.Result.Name})
	var invalid *ValidationError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusUnprocessableEntity, ldvalue.ObjectBuild().
			Set("errors", stringArray(invalid.Messages)).
			Build())
		return
	}
	writeJSON(w, http.StatusCreated, ldvalue.ObjectBuild().
		Set("result", ldvalue.ObjectBuild().
			Set("id", ldvalue.Int(saved.ID)).
			Set("name", ldvalue.String(saved.Name)).
			Build()).
		Build())
}

// readWidgetParams accepts either a JSON body {"widget": {...}} or the form fields
// widget[name] and widget[feature].
func readWidgetParams(r *http.Request) (Widget, error) {
	var params struct {
		Widget struct {
			Name    string `json:"name"`
			Feature string `json:"feature"`
		} `json:"widget"`
	}
	err := readParams(r, &params, func(form url.Values) {
		params.Widget.Name = form.Get("widget[name]")
		params.Widget.Feature = form.Get("widget[feature]")
	})
	return Widget{Name: params.Widget.Name, Feature: params.Widget.Feature}, err
}

// readParams decodes a JSON request body into target, or parses a form and passes it to fromForm.
func readParams(r *http.Request, target interface{}, fromForm func(url.Values)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == contentTypeJSON {
		return json.NewDecoder(r.Body).Decode(target)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm)
	return nil
}

func widgetJSON(w Widget) ldvalue.Value {
	id := ldvalue.Null()
	if w.Persisted() {
		id = ldvalue.Int(w.ID)
	}
	return ldvalue.ObjectBuild().
		Set("id", id).
		Set("name", ldvalue.String(w.Name)).
		Set("feature", ldvalue.String(w.Feature)).
		Build()
}

func stringArray(values []string) ldvalue.Value {
	list := ldvalue.ArrayBuild()
	for _, v := range values {
		list.Add(ldvalue.String(v))
	}
	return list.Build()
}

func writeJSON(w http.ResponseWriter, status int, value ldvalue.Value) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(value.JSONString()))
}

func (a *App) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf strings.Builder
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template failed", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

type widgetForm struct {
	Widget Widget
	Errors []string
}

type searchPage struct {
	Query   string
	Results []Result
}

var views = template.Must(template.New("views").Parse(`
{{define "layout-start"}}<!DOCTYPE html>
<html><head><title>{{.}}</title></head>
<body data-template="{{.}}">{{end}}
{{define "layout-end"}}</body></html>
{{end}}

{{define "widgets/index"}}{{template "layout-start" "widgets/index"}}
<ul class="widgets">
{{range .}}<li class="widget" id="widget_{{.ID}}"><span class="name">{{.Name}}</span> <span class="feature">{{.Feature}}</span></li>
{{end}}</ul>
{{template "layout-end"}}{{end}}

{{define "widgets/show"}}{{template "layout-start" "widgets/show"}}
<div class="widget" id="widget_{{.ID}}">
<h1 class="name">{{.Name}}</h1>
<p class="feature">{{.Feature}}</p>
</div>
{{template "layout-end"}}{{end}}

{{define "widgets/new"}}{{template "layout-start" "widgets/new"}}
<ul class="errors">{{range .Errors}}<li class="error">{{.}}</li>{{end}}</ul>
<form action="/widgets" method="post" class="new_widget">
<input type="text" name="widget[name]" value="{{.Widget.Name}}">
<input type="text" name="widget[feature]" value="{{.Widget.Feature}}">
</form>
{{template "layout-end"}}{{end}}

{{define "search/index"}}{{template "layout-start" "search/index"}}
<h1>Results for "{{.Query}}"</h1>
{{range .Results}}<div class="result" id="result_{{.ID}}">{{.Name}}</div>
{{end}}
{{template "layout-end"}}{{end}}
`))

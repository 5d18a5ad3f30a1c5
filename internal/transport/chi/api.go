package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// FacetParamPrefix marks a flat facet filter query parameter.
const FacetParamPrefix = "facet_"

// ListWorksParams defines the query parameters of GET /works.
type ListWorksParams struct {
	// Search is the free-form search text; its presence selects fuzzy mode.
	Search *string
	// Facets maps a facet name to the values selected for it.
	Facets    map[string][]string
	StartYear *int
	EndYear   *int
	Limit     *int
	Offset    *int
	Threshold *float64
}

// ServerInterface lists the operations served by the API.
type ServerInterface interface {
	// ListWorks handles GET /works.
	ListWorks(w http.ResponseWriter, r *http.Request, params ListWorksParams)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerOptions configures Handler.
type ServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on the base router and returns it.
func Handler(si ServerInterface, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Get("/works", wrapper.ListWorks)
	r.Get("/health", wrapper.HealthCheck)
	r.Get("/metrics", wrapper.Metrics)
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// ListWorks binds the query parameters and delegates.
func (sw *serverInterfaceWrapper) ListWorks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var params ListWorksParams

	bind := func(name string, dest any) bool {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
			return false
		}
		return true
	}

	if !bind("search", &params.Search) {
		return
	}
	if params.Search == nil && !bind("custom_search", &params.Search) {
		return
	}
	if !bind("start_year", &params.StartYear) ||
		!bind("end_year", &params.EndYear) ||
		!bind("limit", &params.Limit) ||
		!bind("offset", &params.Offset) ||
		!bind("threshold", &params.Threshold) {
		return
	}
	params.Facets = facetParams(query)

	sw.handler.ListWorks(w, r, params)
}

// HealthCheck delegates.
func (sw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sw.handler.HealthCheck(w, r)
}

// Metrics delegates.
func (sw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	sw.handler.Metrics(w, r)
}

// facetParams collects repeated facet_<name> parameters. Blank values are
// dropped, and so is a facet left without values.
func facetParams(query map[string][]string) map[string][]string {
	var out map[string][]string
	for k := range query {
		if !strings.HasPrefix(k, FacetParamPrefix) || len(k) == len(FacetParamPrefix) {
			continue
		}
		var values []string
		for _, v := range query[k] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[strings.TrimPrefix(k, FacetParamPrefix)] = values
	}
	return out
}

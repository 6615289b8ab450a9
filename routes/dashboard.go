package routes

import (
	"context"
	"net/http"

	"github.com/aidenappl/retail-core/query"
	"github.com/aidenappl/retail-core/responder"
	"github.com/aidenappl/retail-core/services"
)

// Service answers every /v1 route. Set by main before serving.
var Service *services.Service

type bodyFunc func(context.Context, *query.Filter) ([]byte, bool, error)

// serve parses the filter, runs body and writes the encoded result. Query
// parameters never cause a 400; any failure is a 500 with a fixed body.
func serve(w http.ResponseWriter, r *http.Request, body bodyFunc, cacheControl func(*query.Filter) string) {
	f := query.ParseFilter(r.URL.Query())

	out, hit, err := body(r.Context(), f)
	if err != nil {
		responder.ErrorWithCause(w, r, http.StatusInternalServerError, "internal server error", err)
		return
	}

	responder.Raw(w, out, hit, cacheControl(f))
}

func short(*query.Filter) string { return responder.CacheShort }

// DashboardHandler handles GET /v1/dashboard
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, Service.DashboardBody, short)
}

// DetailHandler handles GET /v1/detail, including export=all
func DetailHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, Service.DetailBody, func(f *query.Filter) string {
		if f.Export {
			return responder.CacheNone
		}
		return responder.CacheShort
	})
}

// FilterOptionsHandler handles GET /v1/filter-options
func FilterOptionsHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, Service.FilterOptionsBody, func(*query.Filter) string {
		return responder.CacheOptions
	})
}

// PromoHandler handles GET /v1/promo
func PromoHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, Service.PromoBody, short)
}

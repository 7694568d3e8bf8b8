package engine

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/feeestimator/log"
)

// RESTLogger logs the requests internally
func RESTLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)

		log.Debugf(log.APIServerMgr,
			"%s\t%s\t%s\t%s",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
		)
	})
}

// newRouter takes in the engine and returns a new multiplexor router
func newRouter(e *Engine) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	routes := []Route{
		{"Health", http.MethodGet, "/v1/health", e.restGetHealth},
		{"Fees", http.MethodGet, "/v1/fees", e.restGetFees},
		{"FeesEstimate", http.MethodGet, "/v1/estimate", e.restGetFeesEstimate},
		{"StorageFee", http.MethodGet, "/v1/storagefee", e.restGetStorageFee},
		{"History", http.MethodGet, "/v1/history/{itemid}", e.restGetHistory},
	}

	for _, route := range routes {
		var handler http.Handler
		handler = route.HandlerFunc
		handler = RESTLogger(handler, route.Name)

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}
	return router
}

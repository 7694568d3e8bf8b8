package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/database/repository/estimate"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
	"github.com/thrasher-corp/feeestimator/marketplace/request"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

// RESTfulJSONResponse outputs a JSON response of the response interface
func RESTfulJSONResponse(w http.ResponseWriter, status int, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// RESTfulError prints the REST method and error
func RESTfulError(method string, err error) {
	log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s",
		method, err)
}

// restfulErrorStatus maps an error onto the HTTP status returned to callers
func restfulErrorStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidQueryValue),
		errors.Is(err, mws.ErrInvalidParameter),
		errors.Is(err, mws.ErrEncoding),
		errors.Is(err, storagefee.ErrInvalidDimensions),
		errors.Is(err, estimate.ErrItemIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, mws.ErrUnparseableFee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, request.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, ErrEstimatorUnavailable),
		errors.Is(err, database.ErrDatabaseSupportDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func restfulErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := restfulErrorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf(log.APIServerMgr, "%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	if err := RESTfulJSONResponse(w, status, ErrorResponse{Error: err.Error()}); err != nil {
		RESTfulError(r.Method, err)
	}
}

func restfulOK(w http.ResponseWriter, r *http.Request, response interface{}) {
	if err := RESTfulJSONResponse(w, http.StatusOK, response); err != nil {
		RESTfulError(r.Method, err)
	}
}

// dimensionsFromQuery reads the optional height, length and width values.
// Missing values are zero.
func dimensionsFromQuery(q url.Values) (storagefee.Dimensions, error) {
	var d storagefee.Dimensions
	for name, dst := range map[string]*float64{
		"height": &d.Height,
		"length": &d.Length,
		"width":  &d.Width,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return d, fmt.Errorf("%w: %s %q", errInvalidQueryValue, name, v)
		}
		*dst = f
	}
	return d, nil
}

func (e *Engine) restGetHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Estimator: e.Estimator != nil,
		Database:  e.DatabaseManager.IsConnected(),
	}
	if !e.Uptime.IsZero() {
		resp.Uptime = time.Since(e.Uptime).Truncate(time.Second).String()
	}
	restfulOK(w, r, resp)
}

func (e *Engine) restGetFees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dims, err := dimensionsFromQuery(q)
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	fee, err := e.GetFees(r.Context(), q.Get("itemid"), q.Get("price"), dims)
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	restfulOK(w, r, FeesResponse{
		ItemID:   q.Get("itemid"),
		Price:    q.Get("price"),
		TotalFee: fee,
	})
}

func (e *Engine) restGetFeesEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := e.GetFeesEstimate(r.Context(), q.Get("itemid"), q.Get("price"))
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	restfulOK(w, r, result)
}

func (e *Engine) restGetStorageFee(w http.ResponseWriter, r *http.Request) {
	dims, err := dimensionsFromQuery(r.URL.Query())
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	fee, err := e.GetStorageFee(dims)
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	restfulOK(w, r, StorageFeeResponse{
		Dimensions:  dims,
		StorageDays: e.StorageCalculator.StorageDays,
		Fee:         fee,
	})
}

func (e *Engine) restGetHistory(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		if limit, err = strconv.Atoi(v); err != nil {
			restfulErrorResponse(w, r, fmt.Errorf("%w: limit %q", errInvalidQueryValue, v))
			return
		}
	}
	history, err := e.History(r.Context(), mux.Vars(r)["itemid"], limit)
	if err != nil {
		restfulErrorResponse(w, r, err)
		return
	}
	if history == nil {
		history = []estimate.Data{}
	}
	restfulOK(w, r, history)
}

package handlers

import (
	"expvar"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExpvarVars proxies the standard expvar handler.
func ExpvarVars(w http.ResponseWriter, r *http.Request) {
	expvar.Handler().ServeHTTP(w, r)
}

// PrometheusMetrics proxies the promhttp handler.
func PrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

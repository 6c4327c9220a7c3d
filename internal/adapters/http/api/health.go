package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/juicerank/pkg/metrics"
)

var metricsHandler = promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}) //nolint:gochecknoglobals // built once

// HandleHealth handles GET /healthz by serving the service metrics.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	metricsHandler.ServeHTTP(w, r)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler answers GET /health with a liveness probe response. It
// never touches the session store or the handler chain: liveness means
// "the process is up", not "every dependency is reachable".
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}

// MetricsHandler exposes the Prometheus registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int    `json:"uptime_seconds"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request, _ Params) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int(time.Since(startTime).Seconds()),
	})
}

// endpointInfo describes one endpoint's contract in the info response.
type endpointInfo struct {
	Path     string   `json:"path"`
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
}

type infoResponse struct {
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Upstream  string         `json:"upstream"`
	Endpoints []endpointInfo `json:"endpoints"`
}

func (s *server) handleInfo(w http.ResponseWriter, _ *http.Request, _ Params) {
	infos := make([]endpointInfo, len(endpoints))
	for i, ep := range endpoints {
		infos[i] = endpointInfo{Path: ep.path, Required: ep.required, Optional: ep.optional}
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Service:   "fiscalgw",
		Version:   s.version,
		Upstream:  s.upstreamURL,
		Endpoints: infos,
	})
}

var metricsHandler = promhttp.Handler()

func (s *server) handleMetrics(w http.ResponseWriter, r *http.Request, _ Params) {
	metricsHandler.ServeHTTP(w, r)
}

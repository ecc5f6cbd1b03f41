// Package api implements the gateway's HTTP surface: the substring-based
// endpoint router, the request adapter, and the per-endpoint handlers.
package api

import (
	"net/http"
	"strings"

	"github.com/tributolabs/fiscalgw/internal/advisor"
)

// RouterDeps holds the dependencies needed by the HTTP router.
type RouterDeps struct {
	Service     *advisor.Service
	Version     string
	UpstreamURL string
	DevMode     bool
}

// server carries the handler dependencies.
type server struct {
	svc         *advisor.Service
	version     string
	upstreamURL string
}

// endpointDef describes one logical endpoint: the substring that selects
// it, its canonical path, and its parameter contract.
type endpointDef struct {
	name     string
	match    string
	path     string
	required []string
	optional []string
	handler  func(*server, http.ResponseWriter, *http.Request, Params)
}

// complianceParams are the four compliance booleans accepted anywhere a
// profile is built.
var complianceParams = []string{
	"rfc_activo", "firma_electronica", "emite_facturas", "declaraciones_al_dia",
}

var profileParams = append([]string{
	"ingresos_anuales", "num_empleados", "metodos_pago", "estado",
}, complianceParams...)

// endpoints is the classification table. Requests are matched by
// substring on the path, in this order; the first match wins.
// Assigned in init to avoid an initialization cycle with handleInfo,
// which iterates the table.
var endpoints []endpointDef

func init() {
	endpoints = []endpointDef{
		{name: "recommendation", match: "recommendation", path: "/recommendation",
			required: []string{"actividad"}, optional: profileParams, handler: (*server).handleAdvice},
		{name: "fiscal_advice", match: "fiscal-advice", path: "/fiscal-advice",
			required: []string{"actividad"}, optional: profileParams, handler: (*server).handleAdvice},
		{name: "chat", match: "chat", path: "/chat",
			required: []string{"mensaje"}, optional: []string{"contexto"}, handler: (*server).handleChat},
		{name: "risk_analysis", match: "risk-analysis", path: "/risk-analysis",
			optional: complianceParams, handler: (*server).handleRiskAnalysis},
		{name: "risk_assessment", match: "risk-assessment", path: "/risk-assessment",
			required: []string{"actividad"}, optional: complianceParams, handler: (*server).handleRiskAssessment},
		{name: "search", match: "search", path: "/search",
			required: []string{"query"}, optional: []string{"limite"}, handler: (*server).handleSearch},
		{name: "places", match: "places", path: "/places",
			required: []string{"query"}, optional: []string{"estado"}, handler: (*server).handlePlaces},
		{name: "user_context", match: "user-context", path: "/user-context",
			required: []string{"user_id"}, handler: (*server).handleUserContext},
		{name: "fiscal_consultation", match: "fiscal-consultation", path: "/fiscal-consultation",
			required: []string{"consulta"}, optional: []string{"actividad"}, handler: (*server).handleConsultation},
		{name: "health", match: "health", path: "/health", handler: (*server).handleHealth},
		{name: "info", match: "info", path: "/info", handler: (*server).handleInfo},
		{name: "metrics", match: "metrics", path: "/metrics", handler: (*server).handleMetrics},
	}
}

// classify resolves a request path to an endpoint by substring match.
func classify(path string) (endpointDef, bool) {
	for _, ep := range endpoints {
		if strings.Contains(path, ep.match) {
			return ep, true
		}
	}
	return endpointDef{}, false
}

// availableEndpoints lists the canonical paths for 404 responses.
func availableEndpoints() []string {
	paths := make([]string, len(endpoints))
	for i, ep := range endpoints {
		paths[i] = ep.path
	}
	return paths
}

// NewRouter creates the HTTP handler with the full middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	s := &server{
		svc:         deps.Service,
		version:     deps.Version,
		upstreamURL: deps.UpstreamURL,
	}

	// Middleware chain: CORS -> RequestID -> Logging -> Metrics -> Recover -> dispatch
	var handler http.Handler = http.HandlerFunc(s.dispatch)
	handler = recoverMiddleware(deps.DevMode)(handler)
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)

	return handler
}

// dispatch classifies the path, validates the parameter contract, and
// invokes the endpoint handler.
func (s *server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ep, ok := classify(r.URL.Path)
	if !ok {
		writeNotFound(w, availableEndpoints())
		return
	}

	params, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if missing := params.missingRequired(ep.required); len(missing) > 0 {
		writeParamError(w, missing, ep.required, ep.optional)
		return
	}

	ep.handler(s, w, r, params)
}

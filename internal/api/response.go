package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tributolabs/fiscalgw/internal/mcp"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error              string   `json:"error"`
	Details            string   `json:"details,omitempty"`
	Missing            []string `json:"missing,omitempty"`
	Required           []string `json:"required,omitempty"`
	Optional           []string `json:"optional,omitempty"`
	AvailableEndpoints []string `json:"available_endpoints,omitempty"`
	Stack              string   `json:"stack,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeParamError reports missing required parameters, enumerating the
// endpoint's full parameter contract.
func writeParamError(w http.ResponseWriter, missing, required, optional []string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:    "missing required parameters",
		Missing:  missing,
		Required: required,
		Optional: optional,
	})
}

// writeNotFound reports an unrecognized path along with the endpoints the
// gateway does serve.
func writeNotFound(w http.ResponseWriter, endpoints []string) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error:              "unknown endpoint",
		AvailableEndpoints: endpoints,
	})
}

// writeServerError converts an internal or upstream failure into a JSON
// 500. Upstream errors carry the upstream body as details for diagnosis.
func writeServerError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "internal error"}
	var ue *mcp.UpstreamError
	if errors.As(err, &ue) {
		resp.Error = "upstream request failed"
	}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decodeJSON reads and decodes a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

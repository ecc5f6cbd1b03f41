package api

import "net/http"

// handleSearch queries the upstream document index.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.Search(r.Context(), p.Str("query"), p.Int("limite"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePlaces looks up government offices for a state/region.
func (s *server) handlePlaces(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.Places(r.Context(), p.Str("query"), p.Str("estado"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUserContext fetches stored user context from upstream.
func (s *server) handleUserContext(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.UserContext(r.Context(), p.Str("user_id"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

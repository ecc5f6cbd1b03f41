package api

import (
	"net/http"
	"time"

	"github.com/tributolabs/fiscalgw/internal/risk"
)

// riskAnalysisResponse wraps the local assessment for the risk-analysis
// endpoint.
type riskAnalysisResponse struct {
	Risk      risk.Assessment `json:"risk"`
	Timestamp time.Time       `json:"timestamp"`
}

// handleRiskAnalysis computes the deterministic compliance score locally;
// no upstream call is made.
func (s *server) handleRiskAnalysis(w http.ResponseWriter, _ *http.Request, p Params) {
	writeJSON(w, http.StatusOK, riskAnalysisResponse{
		Risk:      s.svc.AnalyzeRisk(complianceFromParams(p)),
		Timestamp: time.Now().UTC(),
	})
}

// handleRiskAssessment asks the upstream risk tool for a narrative and
// merges it with the local deterministic assessment.
func (s *server) handleRiskAssessment(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.AssessRisk(r.Context(), profileFromParams(p))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

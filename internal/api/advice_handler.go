package api

import (
	"net/http"

	"github.com/tributolabs/fiscalgw/internal/advisor"
	"github.com/tributolabs/fiscalgw/internal/risk"
)

// profileFromParams assembles the taxpayer profile from request
// parameters.
func profileFromParams(p Params) advisor.FiscalProfile {
	return advisor.FiscalProfile{
		Activity:       p.Str("actividad"),
		AnnualIncome:   p.Float("ingresos_anuales"),
		EmployeeCount:  p.Int("num_empleados"),
		PaymentMethods: p.StrList("metodos_pago"),
		State:          p.Str("estado"),
		Compliance:     complianceFromParams(p),
	}
}

func complianceFromParams(p Params) risk.Compliance {
	return risk.Compliance{
		HasRFC:         p.Bool("rfc_activo"),
		HasSignature:   p.Bool("firma_electronica"),
		IssuesInvoices: p.Bool("emite_facturas"),
		FilesMonthly:   p.Bool("declaraciones_al_dia"),
	}
}

// handleAdvice serves the recommendation and fiscal-advice endpoints.
func (s *server) handleAdvice(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.Recommend(r.Context(), profileFromParams(p))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChat forwards a conversational message upstream.
func (s *server) handleChat(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.Chat(r.Context(), p.Str("mensaje"), p.Str("contexto"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConsultation serves templated fiscal consultations.
func (s *server) handleConsultation(w http.ResponseWriter, r *http.Request, p Params) {
	resp, err := s.svc.Consult(r.Context(), p.Str("consulta"), p.Str("actividad"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

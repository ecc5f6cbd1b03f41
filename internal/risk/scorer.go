// Package risk implements the deterministic fiscal compliance scorer.
//
// A taxpayer profile is evaluated against 4 compliance obligations: an
// active RFC, a current e.firma, electronic invoicing (CFDI), and monthly
// declarations. Each missing obligation costs 25 points off a 100-point
// score and the level degrades from optimal to partial to high risk.
package risk

// Level is the severity tier of an assessment.
type Level string

const (
	LevelOptimal  Level = "optimal"
	LevelPartial  Level = "partial"
	LevelHighRisk Level = "high_risk"
)

// Compliance holds the four boolean obligations evaluated by the scorer.
type Compliance struct {
	HasRFC         bool `json:"rfc_activo"`
	HasSignature   bool `json:"firma_electronica"`
	IssuesInvoices bool `json:"emite_facturas"`
	FilesMonthly   bool `json:"declaraciones_al_dia"`
}

// Assessment is the result of scoring a compliance profile.
type Assessment struct {
	Score     int      `json:"score"`
	Level     Level    `json:"level"`
	Message   string   `json:"message"`
	Penalties int      `json:"penalties"`
	Issues    []string `json:"issues"`
	Compliance
}

// Issue strings, in the fixed evaluation order.
const (
	issueRFC       = "RFC no registrado o inactivo ante el SAT"
	issueSignature = "Firma electrónica (e.firma) no vigente"
	issueInvoices  = "No emite facturas electrónicas (CFDI)"
	issueMonthly   = "Declaraciones mensuales no presentadas al día"
)

const penaltyWeight = 25

// Score evaluates a compliance profile. It is pure and total: every
// combination of inputs maps to exactly one assessment.
func Score(c Compliance) Assessment {
	var issues []string
	if !c.HasRFC {
		issues = append(issues, issueRFC)
	}
	if !c.HasSignature {
		issues = append(issues, issueSignature)
	}
	if !c.IssuesInvoices {
		issues = append(issues, issueInvoices)
	}
	if !c.FilesMonthly {
		issues = append(issues, issueMonthly)
	}

	penalties := len(issues)
	score := 100 - penaltyWeight*penalties
	if score < 0 {
		score = 0
	}

	var level Level
	var message string
	switch {
	case penalties == 0:
		level = LevelOptimal
		message = "Cumplimiento fiscal óptimo"
	case penalties == 1:
		level = LevelPartial
		message = "Cumplimiento parcial, requiere atención"
	default:
		level = LevelHighRisk
		message = "Riesgo alto, se requiere acción inmediata"
	}

	return Assessment{
		Score:      score,
		Level:      level,
		Message:    message,
		Penalties:  penalties,
		Issues:     issues,
		Compliance: c,
	}
}

// Package advisor composes the upstream client, the response extractors,
// and the risk scorer into the flat responses the mobile app consumes.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/tributolabs/fiscalgw/internal/cache"
	"github.com/tributolabs/fiscalgw/internal/config"
	"github.com/tributolabs/fiscalgw/internal/extract"
	"github.com/tributolabs/fiscalgw/internal/mcp"
	"github.com/tributolabs/fiscalgw/internal/risk"
)

// Caller abstracts the upstream tool server for testing.
type Caller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (extract.Value, error)
	GetPrompt(ctx context.Context, name string, args map[string]any) (extract.Value, error)
}

var _ Caller = (*mcp.Client)(nil)

// FiscalProfile is the taxpayer profile assembled from request parameters.
// Transient; built per request and never persisted.
type FiscalProfile struct {
	Activity       string   `json:"actividad"`
	AnnualIncome   float64  `json:"ingresos_anuales,omitempty"`
	EmployeeCount  int      `json:"num_empleados,omitempty"`
	PaymentMethods []string `json:"metodos_pago,omitempty"`
	State          string   `json:"estado,omitempty"`
	risk.Compliance
}

// RecommendationResponse is the outward aggregate for the recommendation
// endpoints.
type RecommendationResponse struct {
	Profile        FiscalProfile    `json:"profile"`
	Risk           risk.Assessment  `json:"risk"`
	Recommendation string           `json:"recommendation"`
	Sources        []extract.Source `json:"sources"`
	SourceCount    int              `json:"source_count"`
	Timestamp      time.Time        `json:"timestamp"`
}

// ChatResponse is the outward shape of the chat endpoint.
type ChatResponse struct {
	Reply     string           `json:"reply"`
	Sources   []extract.Source `json:"sources,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RiskReport pairs the local deterministic assessment with the upstream
// narrative analysis.
type RiskReport struct {
	Risk      risk.Assessment  `json:"risk"`
	Analysis  string           `json:"analysis"`
	Sources   []extract.Source `json:"sources,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// SearchResponse is the outward shape of the search and places endpoints.
type SearchResponse struct {
	Query     string           `json:"query"`
	Summary   string           `json:"summary,omitempty"`
	Results   []extract.Source `json:"results"`
	Total     int              `json:"total"`
	Timestamp time.Time        `json:"timestamp"`
}

// ContextResponse is the outward shape of the user-context endpoint.
type ContextResponse struct {
	UserID    string        `json:"user_id"`
	Data      extract.Value `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// ConsultationResponse is the outward shape of the fiscal-consultation
// endpoint.
type ConsultationResponse struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Service implements the gateway's operations against one upstream server.
type Service struct {
	client  Caller
	tools   config.ToolNames
	prompts *cache.PromptCache
}

// NewService creates a Service.
func NewService(client Caller, tools config.ToolNames, prompts *cache.PromptCache) *Service {
	return &Service{client: client, tools: tools, prompts: prompts}
}

// Recommend fetches a fiscal recommendation for the profile and attaches
// the locally computed risk assessment.
func (s *Service) Recommend(ctx context.Context, profile FiscalProfile) (*RecommendationResponse, error) {
	result, err := s.client.CallTool(ctx, s.tools.Recommendation, profileArgs(profile))
	if err != nil {
		return nil, fmt.Errorf("recommendation tool: %w", err)
	}

	sources := extract.Sources(result)
	return &RecommendationResponse{
		Profile:        profile,
		Risk:           risk.Score(profile.Compliance),
		Recommendation: extract.Recommendation(result),
		Sources:        sources,
		SourceCount:    len(sources),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Chat forwards a free-form message to the upstream chat tool.
func (s *Service) Chat(ctx context.Context, message, history string) (*ChatResponse, error) {
	args := map[string]any{"mensaje": message}
	if history != "" {
		args["contexto"] = history
	}
	result, err := s.client.CallTool(ctx, s.tools.Chat, args)
	if err != nil {
		return nil, fmt.Errorf("chat tool: %w", err)
	}
	return &ChatResponse{
		Reply:     extract.Recommendation(result),
		Sources:   extract.Sources(result),
		Timestamp: time.Now().UTC(),
	}, nil
}

// AnalyzeRisk computes the deterministic local assessment. No upstream
// call is involved.
func (s *Service) AnalyzeRisk(c risk.Compliance) risk.Assessment {
	return risk.Score(c)
}

// AssessRisk consults the upstream risk tool and merges its narrative with
// the local deterministic assessment.
func (s *Service) AssessRisk(ctx context.Context, profile FiscalProfile) (*RiskReport, error) {
	result, err := s.client.CallTool(ctx, s.tools.RiskAssessment, profileArgs(profile))
	if err != nil {
		return nil, fmt.Errorf("risk tool: %w", err)
	}
	return &RiskReport{
		Risk:      risk.Score(profile.Compliance),
		Analysis:  extract.Recommendation(result),
		Sources:   extract.Sources(result),
		Timestamp: time.Now().UTC(),
	}, nil
}

// Search queries the upstream document index.
func (s *Service) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	args := map[string]any{"query": query}
	if limit > 0 {
		args["limite"] = limit
	}
	return s.search(ctx, s.tools.Search, query, args)
}

// Places looks up government offices near a state/region.
func (s *Service) Places(ctx context.Context, query, state string) (*SearchResponse, error) {
	args := map[string]any{"query": query}
	if state != "" {
		args["estado"] = state
	}
	return s.search(ctx, s.tools.Places, query, args)
}

func (s *Service) search(ctx context.Context, tool, query string, args map[string]any) (*SearchResponse, error) {
	result, err := s.client.CallTool(ctx, tool, args)
	if err != nil {
		return nil, fmt.Errorf("%s tool: %w", tool, err)
	}
	results := extract.Sources(result)
	resp := &SearchResponse{
		Query:     query,
		Results:   results,
		Total:     len(results),
		Timestamp: time.Now().UTC(),
	}
	// With no source list, the extracted text is the only payload.
	if len(results) == 0 {
		resp.Summary = extract.Recommendation(result)
	}
	return resp, nil
}

// UserContext fetches the stored context for a user from the upstream
// server.
func (s *Service) UserContext(ctx context.Context, userID string) (*ContextResponse, error) {
	result, err := s.client.CallTool(ctx, s.tools.UserContext, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("user context tool: %w", err)
	}
	return &ContextResponse{
		UserID:    userID,
		Data:      result,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Consult retrieves the consultation prompt for a query. Prompt templates
// are cached; a cache hit answers without an upstream round trip.
func (s *Service) Consult(ctx context.Context, query, activity string) (*ConsultationResponse, error) {
	args := map[string]any{"consulta": query}
	if activity != "" {
		args["actividad"] = activity
	}

	load := func() (extract.Value, error) {
		return s.client.GetPrompt(ctx, s.tools.Consultation, args)
	}

	var result extract.Value
	var err error
	if s.prompts != nil {
		result, err = s.prompts.GetOrLoad(s.tools.Consultation, args, load)
	} else {
		result, err = load()
	}
	if err != nil {
		return nil, fmt.Errorf("consultation prompt: %w", err)
	}

	return &ConsultationResponse{
		Query:     query,
		Answer:    extract.Recommendation(result),
		Timestamp: time.Now().UTC(),
	}, nil
}

// profileArgs flattens a profile into tool-call arguments. Optional fields
// are omitted when unset; the compliance booleans always travel.
func profileArgs(p FiscalProfile) map[string]any {
	args := map[string]any{
		"actividad":            p.Activity,
		"rfc_activo":           p.HasRFC,
		"firma_electronica":    p.HasSignature,
		"emite_facturas":       p.IssuesInvoices,
		"declaraciones_al_dia": p.FilesMonthly,
	}
	if p.AnnualIncome > 0 {
		args["ingresos_anuales"] = p.AnnualIncome
	}
	if p.EmployeeCount > 0 {
		args["num_empleados"] = p.EmployeeCount
	}
	if len(p.PaymentMethods) > 0 {
		args["metodos_pago"] = p.PaymentMethods
	}
	if p.State != "" {
		args["estado"] = p.State
	}
	return args
}

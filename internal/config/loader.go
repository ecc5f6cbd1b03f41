// Package config holds the runtime settings for the gateway and the
// optional YAML override file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUpstreamURL is the public tool server used when nothing else is
// configured.
const DefaultUpstreamURL = "https://fiscal-mcp.tributolabs.com"

// ToolNames maps each gateway operation to the upstream tool or prompt it
// invokes.
type ToolNames struct {
	Recommendation string `yaml:"recommendation"`
	Chat           string `yaml:"chat"`
	RiskAssessment string `yaml:"risk_assessment"`
	Search         string `yaml:"search"`
	Places         string `yaml:"places"`
	UserContext    string `yaml:"user_context"`
	Consultation   string `yaml:"consultation"` // prompts/get name
}

// Settings is the resolved runtime configuration.
type Settings struct {
	UpstreamURL        string
	UpstreamTimeout    time.Duration
	Tools              ToolNames
	PromptCacheEntries int
	PromptCacheTTL     time.Duration
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		UpstreamURL:     DefaultUpstreamURL,
		UpstreamTimeout: 60 * time.Second,
		Tools: ToolNames{
			Recommendation: "obtener_recomendaciones",
			Chat:           "chat_fiscal",
			RiskAssessment: "evaluar_riesgo",
			Search:         "buscar_informacion",
			Places:         "buscar_oficinas",
			UserContext:    "contexto_usuario",
			Consultation:   "consulta_fiscal",
		},
		PromptCacheEntries: 128,
		PromptCacheTTL:     10 * time.Minute,
	}
}

// FileConfig represents the top-level fiscalgw.yaml structure. All fields
// are optional overrides over Default.
type FileConfig struct {
	Upstream struct {
		URL        string `yaml:"url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"upstream"`
	Tools       ToolNames `yaml:"tools"`
	PromptCache struct {
		MaxEntries int `yaml:"max_entries"`
		TTLSec     int `yaml:"ttl_sec"`
	} `yaml:"prompt_cache"`
}

// LoadFile reads, parses, and validates a YAML config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML config data.
func Parse(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the parsed config for correctness.
func validate(cfg *FileConfig) error {
	var errs []string

	if cfg.Upstream.URL != "" {
		u, err := url.Parse(cfg.Upstream.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("upstream.url: %q is not an absolute URL", cfg.Upstream.URL))
		}
	}
	if cfg.Upstream.TimeoutSec < 0 {
		errs = append(errs, "upstream.timeout_sec: must not be negative")
	}
	if cfg.PromptCache.MaxEntries < 0 {
		errs = append(errs, "prompt_cache.max_entries: must not be negative")
	}
	if cfg.PromptCache.TTLSec < 0 {
		errs = append(errs, "prompt_cache.ttl_sec: must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Apply overlays the file's non-zero fields onto s.
func (s *Settings) Apply(cfg *FileConfig) {
	if cfg.Upstream.URL != "" {
		s.UpstreamURL = cfg.Upstream.URL
	}
	if cfg.Upstream.TimeoutSec > 0 {
		s.UpstreamTimeout = time.Duration(cfg.Upstream.TimeoutSec) * time.Second
	}
	applyToolName(&s.Tools.Recommendation, cfg.Tools.Recommendation)
	applyToolName(&s.Tools.Chat, cfg.Tools.Chat)
	applyToolName(&s.Tools.RiskAssessment, cfg.Tools.RiskAssessment)
	applyToolName(&s.Tools.Search, cfg.Tools.Search)
	applyToolName(&s.Tools.Places, cfg.Tools.Places)
	applyToolName(&s.Tools.UserContext, cfg.Tools.UserContext)
	applyToolName(&s.Tools.Consultation, cfg.Tools.Consultation)
	if cfg.PromptCache.MaxEntries > 0 {
		s.PromptCacheEntries = cfg.PromptCache.MaxEntries
	}
	if cfg.PromptCache.TTLSec > 0 {
		s.PromptCacheTTL = time.Duration(cfg.PromptCache.TTLSec) * time.Second
	}
}

func applyToolName(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Params is the normalized parameter map for one request: query
// parameters merged with JSON body fields, body winning on collision.
// Gateways deliver query values as strings, so the typed getters coerce.
type Params map[string]any

// parseParams merges the request's query string and JSON body into one
// map. A malformed JSON body is a client error.
func parseParams(r *http.Request) (Params, error) {
	p := Params{}
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			p[key] = vals[0]
		}
	}

	if r.Body == nil || r.ContentLength == 0 {
		return p, nil
	}
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	for key, val := range body {
		p[key] = val
	}
	return p, nil
}

// Has reports whether the parameter is present and non-empty.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Str returns the string value of a parameter, or "".
func (p Params) Str(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

// Bool coerces a parameter to a boolean. Accepts JSON booleans and the
// usual string spellings, including Spanish ones.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "si", "sí", "yes":
			return true
		}
	}
	return false
}

// Int coerces a parameter to an integer, or 0.
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

// Float coerces a parameter to a float, or 0.
func (p Params) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// StrList coerces a parameter to a string list. JSON arrays keep their
// string elements; a plain string splits on commas.
func (p Params) StrList(key string) []string {
	switch v := p[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// missingRequired returns the required keys absent from p.
func (p Params) missingRequired(required []string) []string {
	var missing []string
	for _, key := range required {
		if !p.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

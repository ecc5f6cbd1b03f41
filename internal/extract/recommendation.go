package extract

// FallbackRecommendation is returned when no extraction rule matches the
// upstream result shape. Extraction never fails; it degrades to this
// sentinel.
const FallbackRecommendation = "No fue posible interpretar la respuesta del servidor de asesoría fiscal."

// rule is a named predicate+transform pair over an upstream result. Rules
// are evaluated in priority order; the first one that matches wins.
type rule struct {
	name  string
	apply func(Value) (string, bool)
}

var recommendationRules = []rule{
	{name: "content_block", apply: fromContentBlock},
	{name: "recommendation_field", apply: fromRecommendationField},
	{name: "data_field", apply: fromDataField},
	{name: "string_result", apply: fromStringResult},
}

// Recommendation extracts the recommendation text from an upstream result
// of unknown shape. It is total: unrecognized shapes yield the fallback
// sentinel, never an error.
func Recommendation(v Value) string {
	for _, r := range recommendationRules {
		if text, ok := r.apply(v); ok {
			return text
		}
	}
	return FallbackRecommendation
}

// fromContentBlock handles MCP-style results: a "content" list whose text
// block carries either plain prose or serialized JSON.
func fromContentBlock(v Value) (string, bool) {
	text, ok := contentText(v)
	if !ok {
		return "", false
	}
	inner, err := Parse([]byte(text))
	if err != nil {
		// Not JSON: the text block is the recommendation itself.
		return text, true
	}
	if rec, ok := searchRecommendation(inner); ok {
		return rec, true
	}
	return text, true
}

func fromRecommendationField(v Value) (string, bool) {
	return v.FieldStr("recommendation")
}

func fromDataField(v Value) (string, bool) {
	data, ok := v.Field("data")
	if !ok {
		return "", false
	}
	if s, ok := data.Str(); ok {
		return s, true
	}
	if rec, ok := data.FieldStr("recommendation"); ok {
		return rec, true
	}
	return data.FieldStr("response")
}

func fromStringResult(v Value) (string, bool) {
	s, ok := v.Str()
	if !ok {
		return "", false
	}
	inner, err := Parse([]byte(s))
	if err != nil {
		return s, true
	}
	if rec, ok := searchRecommendation(inner); ok {
		return rec, true
	}
	return s, true
}

// searchRecommendation looks for the recommendation inside a parsed JSON
// object, in fixed priority order.
func searchRecommendation(v Value) (string, bool) {
	if rec, ok := v.StrAt("data", "recommendation"); ok {
		return rec, true
	}
	if rec, ok := v.StrAt("data", "response"); ok {
		return rec, true
	}
	return v.FieldStr("recommendation")
}

// contentText returns the text of the first text-typed content block.
func contentText(v Value) (string, bool) {
	blocks, ok := v.Field("content")
	if !ok {
		return "", false
	}
	list, ok := blocks.List()
	if !ok {
		return "", false
	}
	for _, block := range list {
		if typ, ok := block.FieldStr("type"); !ok || typ != "text" {
			continue
		}
		if text, ok := block.FieldStr("text"); ok {
			return text, true
		}
	}
	return "", false
}

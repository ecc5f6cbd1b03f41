package extract

// Source is a normalized source document cited by a recommendation.
type Source struct {
	Title      string  `json:"title"`
	Scope      string  `json:"scope,omitempty"`
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// sourcePaths are the key paths checked for a source list, in priority
// order, both inside a parsed content block and on the bare result.
var sourcePaths = [][]string{
	{"data", "sources"},
	{"data", "documents"},
	{"sources"},
	{"documents"},
}

// Sources extracts the source document list from an upstream result.
// The first non-empty match wins; an unrecognized shape yields an empty
// slice, never an error.
func Sources(v Value) []Source {
	if text, ok := contentText(v); ok {
		if inner, err := Parse([]byte(text)); err == nil {
			if docs := sourcesAtPaths(inner); len(docs) > 0 {
				return docs
			}
		}
	}
	if docs := sourcesAtPaths(v); docs != nil {
		return docs
	}
	return []Source{}
}

func sourcesAtPaths(v Value) []Source {
	for _, path := range sourcePaths {
		cur := v
		found := true
		for _, key := range path {
			f, ok := cur.Field(key)
			if !ok {
				found = false
				break
			}
			cur = f
		}
		if !found {
			continue
		}
		if docs := toSources(cur); len(docs) > 0 {
			return docs
		}
	}
	return nil
}

// toSources converts a list value into Sources, skipping malformed items.
func toSources(v Value) []Source {
	list, ok := v.List()
	if !ok {
		return nil
	}
	docs := make([]Source, 0, len(list))
	for _, item := range list {
		if item.Kind() != KindMap {
			continue
		}
		var doc Source
		doc.Title, _ = item.FieldStr("title")
		doc.Scope, _ = item.FieldStr("scope")
		doc.URL, _ = item.FieldStr("url")
		if sim, ok := item.Field("similarity"); ok {
			doc.Similarity, _ = sim.Num()
		}
		docs = append(docs, doc)
	}
	return docs
}

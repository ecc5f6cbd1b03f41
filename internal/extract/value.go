// Package extract normalizes heterogeneously shaped upstream tool results
// into a recommendation string and a list of source documents.
//
// Upstream payloads are untrusted and arrive in several shapes: plain JSON
// objects, JSON-encoded strings, and MCP-style content envelopes whose text
// blocks carry serialized JSON. All shape sniffing goes through the Value
// tagged union so the matching logic never reflects on raw interface values.
package extract

import (
	"encoding/json"
	"sort"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a decoded JSON document: exactly one variant is populated,
// selected by Kind. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

// Parse decodes raw JSON into a Value.
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return FromAny(raw), nil
}

// FromAny converts a json.Unmarshal result into a Value.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case string:
		return Value{kind: KindString, str: v}
	case float64:
		return Value{kind: KindNumber, num: v}
	case bool:
		return Value{kind: KindBool, b: v}
	case []any:
		list := make([]Value, len(v))
		for i, item := range v {
			list[i] = FromAny(item)
		}
		return Value{kind: KindList, list: list}
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, item := range v {
			m[k] = FromAny(item)
		}
		return Value{kind: KindMap, m: m}
	default:
		// json.Unmarshal into any never produces other types.
		return Value{}
	}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string variant.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the number variant.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Bool returns the boolean variant.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// List returns the list variant.
func (v Value) List() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Field returns the named entry of a map value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.m[key]
	return f, ok
}

// FieldStr returns the named entry when it is a string.
func (v Value) FieldStr(key string) (string, bool) {
	f, ok := v.Field(key)
	if !ok {
		return "", false
	}
	return f.Str()
}

// Keys returns the map variant's keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts a Value back into plain decoded-JSON Go values.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the value back to JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// StrAt follows a key path and returns the string at its end.
func (v Value) StrAt(keys ...string) (string, bool) {
	cur := v
	for _, k := range keys {
		f, ok := cur.Field(k)
		if !ok {
			return "", false
		}
		cur = f
	}
	return cur.Str()
}

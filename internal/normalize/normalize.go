// Package normalize canonicalizes character-registration payloads arriving
// from clients that are not consistent about shapes. Relationship data may
// arrive as a flat map, a list of fragments, a numerically-indexed map, or
// a single escaped string; list fields may arrive as one concatenated
// string. Normalization never fails: anything unparseable degrades to an
// empty map or list.
package normalize

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"npcforge/pkg/logger"
)

// Payload returns a canonical copy of a raw registration payload:
// "relationships" is a flat name->label string map, a singular
// "relationship" string is folded in and deleted, and "inventory"/"skills"
// are flat string lists. The input map is not modified.
func Payload(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	rels := Relationships(out["relationships"])

	if singular, ok := out["relationship"].(string); ok {
		extracted := RelationshipString(singular)
		if len(extracted) == 0 && strings.TrimSpace(singular) != "" {
			logger.Get().Warn("Could not extract relationships from singular field",
				zap.String("value", singular),
			)
		}
		for name, label := range extracted {
			if _, exists := rels[name]; !exists {
				rels[name] = label
			}
		}
	}
	delete(out, "relationship")
	out["relationships"] = rels

	out["inventory"] = StringList(out["inventory"])
	out["skills"] = StringList(out["skills"])

	return out
}

// PartialPayload canonicalizes only the keys present in raw, for shallow
// metadata merges where an absent field must stay absent rather than
// becoming an empty list.
func PartialPayload(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	_, hasPlural := out["relationships"]
	singular, hasSingular := out["relationship"].(string)
	if hasPlural || hasSingular {
		rels := Relationships(out["relationships"])
		if hasSingular {
			for name, label := range RelationshipString(singular) {
				if _, exists := rels[name]; !exists {
					rels[name] = label
				}
			}
		}
		delete(out, "relationship")
		out["relationships"] = rels
	}

	if v, ok := out["inventory"]; ok {
		out["inventory"] = StringList(v)
	}
	if v, ok := out["skills"]; ok {
		out["skills"] = StringList(v)
	}

	return out
}

// Relationships canonicalizes a relationships value of any shape into a
// flat name->label string map. The rules apply in order and the first one
// that yields data wins; an unrecognized shape yields an empty map.
func Relationships(v interface{}) map[string]string {
	switch t := v.(type) {
	case nil:
		return map[string]string{}
	case map[string]string:
		out := make(map[string]string, len(t))
		for name, label := range t {
			out[name] = label
		}
		return out
	case map[string]interface{}:
		if isNumericKeyed(t) {
			return foldNumericKeyed(t)
		}
		out := make(map[string]string, len(t))
		for name, label := range t {
			out[name] = flattenLabel(label)
		}
		return out
	case []interface{}:
		return foldList(t)
	case []string:
		items := make([]interface{}, len(t))
		for i, s := range t {
			items[i] = s
		}
		return foldList(items)
	case string:
		return RelationshipString(t)
	default:
		logger.Get().Warn("Unrecognized relationships shape, dropping",
			zap.Any("value", v),
		)
		return map[string]string{}
	}
}

// foldList flattens a list of relationship fragments: map items merge their
// own keys, "key:value" strings split on the first colon, anything else is
// skipped.
func foldList(items []interface{}) map[string]string {
	out := map[string]string{}
	for _, item := range items {
		switch frag := item.(type) {
		case map[string]interface{}:
			for name, label := range frag {
				out[name] = flattenLabel(label)
			}
		case string:
			if name, label, ok := splitFirstColon(frag); ok {
				out[name] = label
			}
		}
	}
	return out
}

// foldNumericKeyed flattens a map that arrived as a numerically-indexed
// collection. Each value is either a {name: label} object or a bare string;
// bare strings only carry a target when they contain a colon.
func foldNumericKeyed(m map[string]interface{}) map[string]string {
	out := map[string]string{}

	// Visit in index order so later entries win deterministically
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch frag := m[k].(type) {
		case map[string]interface{}:
			for name, label := range frag {
				out[name] = flattenLabel(label)
			}
		case string:
			if name, label, ok := splitFirstColon(frag); ok {
				out[name] = label
			}
		}
	}
	return out
}

func isNumericKeyed(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		for _, r := range k {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func splitFirstColon(s string) (name, label string, ok bool) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(trimQuotes(s[:idx]))
	label = strings.TrimSpace(trimQuotes(s[idx+1:]))
	if name == "" || label == "" {
		return "", "", false
	}
	return name, label, true
}

// flattenLabel coerces a label of any shape to a string. Maps contribute
// their first string value in key order, lists join with a comma.
func flattenLabel(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
		return ""
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return ""
	}
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}

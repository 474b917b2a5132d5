package normalize

import (
	"encoding/json"
	"regexp"
	"strings"
)

var quotedPairPattern = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]+)"`)

// RelationshipString extracts name->label pairs from a singular
// relationship string. Four strategies run in order and the first one that
// yields at least one pair wins; when none does the result is empty, never
// an error.
func RelationshipString(s string) map[string]string {
	for _, strategy := range []func(string) map[string]string{
		extractQuotedPairs,
		parseBraced,
		splitQuoteAwareSegments,
		splitAlternatingTokens,
	} {
		if pairs := strategy(s); len(pairs) > 0 {
			return pairs
		}
	}
	return map[string]string{}
}

// extractQuotedPairs un-escapes quotes and pulls every "name": "label"
// pair out of the string
func extractQuotedPairs(s string) map[string]string {
	out := map[string]string{}
	for _, match := range quotedPairPattern.FindAllStringSubmatch(unescapeQuotes(s), -1) {
		name := strings.TrimSpace(match[1])
		label := strings.TrimSpace(match[2])
		if name != "" && label != "" {
			out[name] = label
		}
	}
	return out
}

// parseBraced wraps the cleaned string in braces and parses it as a JSON
// object
func parseBraced(s string) map[string]string {
	cleaned := strings.Trim(strings.TrimSpace(unescapeQuotes(s)), "{}")
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte("{"+cleaned+"}"), &parsed); err != nil {
		return map[string]string{}
	}
	out := map[string]string{}
	for name, label := range parsed {
		if str, ok := label.(string); ok && name != "" && str != "" {
			out[name] = str
		}
	}
	return out
}

// splitQuoteAwareSegments splits on commas outside quotes and re-runs the
// quoted-pair extraction on each segment
func splitQuoteAwareSegments(s string) map[string]string {
	out := map[string]string{}
	for _, segment := range splitOutsideQuotes(s, ',') {
		for name, label := range extractQuotedPairs(segment) {
			out[name] = label
		}
	}
	return out
}

// splitAlternatingTokens naively splits on delimiters and pairs up the
// resulting tokens as alternating name/label values
func splitAlternatingTokens(s string) map[string]string {
	rawTokens := strings.FieldsFunc(unescapeQuotes(s), func(r rune) bool {
		return r == ':' || r == ',' || r == ';'
	})
	tokens := make([]string, 0, len(rawTokens))
	for _, tok := range rawTokens {
		tok = strings.TrimSpace(trimQuotes(strings.TrimSpace(strings.Trim(tok, "{}"))))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	out := map[string]string{}
	for i := 0; i+1 < len(tokens); i += 2 {
		out[tokens[i]] = tokens[i+1]
	}
	return out
}

func unescapeQuotes(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

func splitOutsideQuotes(s string, sep rune) []string {
	var segments []string
	var current strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == sep && !inQuotes:
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	segments = append(segments, current.String())
	return segments
}

package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var listDelimiterPattern = regexp.MustCompile(`[,;|]`)

// StringList canonicalizes an inventory/skills value into a flat ordered
// string list. A single string splits on explicit delimiters when present,
// otherwise at embedded capital-after-lowercase boundaries (a run of
// concatenated capitalized words), otherwise on whitespace. An absent field
// is an empty list.
func StringList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			var s string
			if str, ok := item.(string); ok {
				s = str
			} else if item != nil {
				s = fmt.Sprintf("%v", item)
			}
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case string:
		return splitListString(t)
	default:
		return []string{}
	}
}

func splitListString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}

	if listDelimiterPattern.MatchString(s) {
		parts := listDelimiterPattern.Split(s, -1)
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}

	if hasCapitalBoundary(s) {
		return splitCapitalBoundaries(s)
	}

	if strings.ContainsAny(s, " \t\n") {
		return strings.Fields(s)
	}

	return splitCapitalBoundaries(s)
}

// hasCapitalBoundary reports whether s contains an uppercase rune directly
// after a lowercase one
func hasCapitalBoundary(s string) bool {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			return true
		}
	}
	return false
}

// splitCapitalBoundaries breaks "HammerTongsSword" into Hammer, Tongs,
// Sword. A string with no boundary comes back as a single token.
func splitCapitalBoundaries(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	out = append(out, string(runes[start:]))
	return out
}

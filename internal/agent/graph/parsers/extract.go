package parsers

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reDescriptionType = regexp.MustCompile(`"type"\s*:\s*"update_description"`)
	// reValueEnd matches what may follow the closing quote of a string value:
	// another key, the end of the enclosing object or array, or end of text.
	reValueEnd = regexp.MustCompile(`^\s*(?:,\s*"[A-Za-z_][A-Za-z0-9_]*"\s*:|[}\]]|$)`)

	descriptionFields = []string{"description", "shortDescription", "productName", "metaTitle", "metaDescription"}
	fieldPatterns     = map[string]*regexp.Regexp{}

	looseUnescaper = strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t", `\r`, "", `\/`, `/`, `\\`, `\`)
)

func init() {
	for _, key := range append([]string{"message"}, descriptionFields...) {
		fieldPatterns[key] = fieldPattern(key)
	}
}

func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"`)
}

// ExtractField pulls one string field out of possibly broken JSON. Values may
// contain unescaped quotes or braces (generated HTML) and may be cut off; the
// value ends at a quote followed by another key, a closing bracket or the end
// of the text.
func ExtractField(content, key string) (string, bool) {
	re, ok := fieldPatterns[key]
	if !ok {
		re = fieldPattern(key)
	}
	loc := re.FindStringIndex(content)
	if loc == nil {
		return "", false
	}
	rest := content[loc[1]:]

	end := -1
	escaped := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' && reValueEnd.MatchString(rest[i+1:]) {
			end = i
			break
		}
	}

	var raw string
	if end >= 0 {
		raw = rest[:end]
	} else {
		raw = strings.TrimRight(rest, " \t\r\n}]\"")
		raw = strings.TrimSuffix(raw, `\`)
	}
	return unescapeValue(raw), true
}

// ExtractFields is the regex strategy: the message field, plus the
// description fields when the text declares an update_description action.
func ExtractFields(content string) (message string, action map[string]any, ok bool) {
	message, hasMessage := ExtractField(content, "message")

	if reDescriptionType.MatchString(content) {
		action = map[string]any{"type": "update_description"}
		for _, key := range descriptionFields {
			if v, found := ExtractField(content, key); found {
				action[key] = v
			}
		}
	}

	return strings.TrimSpace(message), action, hasMessage || action != nil
}

func unescapeValue(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err == nil {
		return s
	}
	return looseUnescaper.Replace(raw)
}

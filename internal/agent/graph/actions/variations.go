package actions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
)

var reInstructionWidth = regexp.MustCompile(`(?i)(\d{2,3})\s*(?:cm|εκ)`)

var (
	widthAttributeHints = []string{"width", "size", "dimension", "πλάτος", "πλατος", "διάστασ", "διαστασ", "μέγεθος", "μεγεθος"}
	colorAttributeHints = []string{"color", "colour", "χρώμα", "χρωμα"}
)

// ResolveWidthFilter returns the declared filter, else a width like "160cm"
// spelled out in the instruction, else "all".
func ResolveWidthFilter(declared, instruction string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	if m := reInstructionWidth.FindStringSubmatch(instruction); m != nil {
		return m[1]
	}
	return model.WidthFilterAll
}

// FilterByWidth keeps the variations whose width-like attribute contains the
// filter token. Matching is a substring test, so "20" also selects "200".
func FilterByWidth(variations []model.Variation, filter string) []model.Variation {
	token := strings.ToLower(strings.TrimSpace(filter))
	if token == "" || token == model.WidthFilterAll {
		return append([]model.Variation(nil), variations...)
	}
	var out []model.Variation
	for _, v := range variations {
		for _, name := range v.AttributeNames() {
			if !hasHint(name, widthAttributeHints) {
				continue
			}
			if strings.Contains(strings.ToLower(v.Attributes[name]), token) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// DisplayName renders a variation as "<color> - <width>", falling back to all
// attribute values in canonical order and finally to the variation id.
func DisplayName(v model.Variation) string {
	color := attributeByHint(v, colorAttributeHints)
	width := attributeByHint(v, widthAttributeHints)
	if parts := nonEmpty(color, width); len(parts) > 0 {
		return strings.Join(parts, " - ")
	}
	var values []string
	for _, name := range v.AttributeNames() {
		if val := strings.TrimSpace(v.Attributes[name]); val != "" {
			values = append(values, val)
		}
	}
	if len(values) > 0 {
		return strings.Join(values, " / ")
	}
	return fmt.Sprintf("#%d", v.ID)
}

func attributeByHint(v model.Variation, hints []string) string {
	for _, name := range v.AttributeNames() {
		if hasHint(name, hints) {
			return strings.TrimSpace(v.Attributes[name])
		}
	}
	return ""
}

func hasHint(name string, hints []string) bool {
	lower := strings.ToLower(name)
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// WidthOf returns the value of the variation's first width-like attribute.
func WidthOf(v model.Variation) string {
	return attributeByHint(v, widthAttributeHints)
}

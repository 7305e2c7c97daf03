package actions

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

const maxSearchDepth = 6

// nestedScopes are searched in this order before any other nested object.
var nestedScopes = []string{"action", "details", "params", "parameters", "data", "seo"}

var (
	reNonNumeric = regexp.MustCompile(`[^0-9.,]`)
	reFirstInt   = regexp.MustCompile(`\d+`)
)

// NormalizeIntent turns the loosely shaped action object emitted by the
// generator into one ActionIntent. It returns (nil, nil) when there is no
// action at all. A changeAmount found at any depth marks a price change even
// without a declared type; an explicitly declared unknown type is rejected.
func NormalizeIntent(action map[string]any) (model.ActionIntent, error) {
	if len(action) == 0 {
		return nil, nil
	}

	declared := declaredType(action)
	amountValue, host, hasAmount := findKey(action, "changeAmount", 0)

	switch declared {
	case model.ActionPriceUpdate, model.ActionBulkUpdatePrice:
		if !hasAmount {
			return nil, errx.Wrap(errx.ErrMalformedModelOutput, fmt.Errorf("%s without changeAmount", declared))
		}
		return priceChangeIntent(amountValue, host, action)
	case model.ActionConvertToSale:
		return saleConversionIntent(action), nil
	case model.ActionUpdateDescription:
		return descriptionIntent(action), nil
	case "":
		if hasAmount {
			return priceChangeIntent(amountValue, host, action)
		}
		return nil, nil
	default:
		return nil, errx.Wrap(errx.ErrInvalidActionType, fmt.Errorf("type %q", declared))
	}
}

func declaredType(action map[string]any) model.ActionType {
	raw := stringValue(action["type"])
	if raw == "" {
		// {"action":"price_update", ...} when the envelope itself was passed in
		raw = stringValue(action["action"])
	}
	return model.ActionType(strings.ToLower(strings.TrimSpace(raw)))
}

func priceChangeIntent(amountValue any, host, action map[string]any) (model.ActionIntent, error) {
	amount, ok := coerceNumber(amountValue)
	if !ok {
		return nil, errx.Wrap(errx.ErrMalformedModelOutput, fmt.Errorf("changeAmount %v is not numeric", amountValue))
	}
	scopes := []map[string]any{host, action}

	direction := normalizeDirection(lookupString(scopes, "changeDirection", "direction"))
	if amount < 0 {
		if direction == "" {
			direction = model.DirectionDecrease
		}
		amount = -amount
	}
	if direction == "" {
		direction = model.DirectionIncrease
	}

	return model.PriceChangeIntent{
		ChangeAmount: amount,
		Direction:    direction,
		PriceType:    normalizePriceType(lookupString(scopes, "priceType")),
		WidthFilter:  normalizeWidth(lookupAny(scopes, "filterWidth", "widthFilter", "width")),
		ProductName:  lookupString(scopes, "productName", "product"),
	}, nil
}

func saleConversionIntent(action map[string]any) model.ActionIntent {
	scopes := scopesOf(action)
	in := model.SaleConversionIntent{
		WidthFilter: normalizeWidth(lookupAny(scopes, "widthFilter", "filterWidth", "width")),
		ProductName: lookupString(scopes, "productName", "product"),
	}
	if in.WidthFilter == "" {
		in.WidthFilter = model.WidthFilterAll
	}
	if v := lookupAny(scopes, "regularPriceIncrease", "priceIncrease", "increase"); v != nil {
		if f, ok := coerceNumber(v); ok {
			in.RegularPriceIncrease = math.Abs(f)
			in.HasIncrease = true
		}
	}
	return in
}

func descriptionIntent(action map[string]any) model.ActionIntent {
	scopes := scopesOf(action)
	return model.DescriptionIntent{
		ProductName:      lookupString(scopes, "productName", "product"),
		Description:      lookupRaw(scopes, "description"),
		ShortDescription: lookupRaw(scopes, "shortDescription"),
		MetaTitle:        lookupRaw(scopes, "metaTitle"),
		MetaDescription:  lookupRaw(scopes, "metaDescription"),
	}
}

// scopesOf returns the action followed by its nested parameter objects.
func scopesOf(action map[string]any) []map[string]any {
	scopes := []map[string]any{action}
	for _, key := range nestedScopes[1:] {
		if m, ok := action[key].(map[string]any); ok {
			scopes = append(scopes, m)
		}
	}
	return scopes
}

// findKey searches v depth-first for key (case and underscore insensitive)
// and returns the value with the object that holds it. Keys are visited in
// orderedKeys order so the same input always yields the same match.
func findKey(v any, key string, depth int) (any, map[string]any, bool) {
	if depth > maxSearchDepth {
		return nil, nil, false
	}
	switch x := v.(type) {
	case map[string]any:
		keys := orderedKeys(x)
		for _, k := range keys {
			if keyEq(k, key) {
				return x[k], x, true
			}
		}
		for _, k := range keys {
			if found, host, ok := findKey(x[k], key, depth+1); ok {
				return found, host, true
			}
		}
	case []any:
		for _, val := range x {
			if found, host, ok := findKey(val, key, depth+1); ok {
				return found, host, true
			}
		}
	}
	return nil, nil, false
}

// orderedKeys lists the well-known nested scopes first, then the remaining
// keys sorted.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for _, k := range nestedScopes {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !slices.Contains(nestedScopes, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func keyEq(a, b string) bool {
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, "_", "")) }
	return norm(a) == norm(b)
}

func lookupAny(scopes []map[string]any, keys ...string) any {
	for _, m := range scopes {
		if m == nil {
			continue
		}
		for _, key := range keys {
			for _, k := range orderedKeys(m) {
				if v := m[k]; v != nil && keyEq(k, key) {
					return v
				}
			}
		}
	}
	return nil
}

func lookupString(scopes []map[string]any, keys ...string) string {
	return strings.TrimSpace(stringValue(lookupAny(scopes, keys...)))
}

// lookupRaw keeps generated free text exactly as written.
func lookupRaw(scopes []map[string]any, keys ...string) string {
	s, _ := lookupAny(scopes, keys...).(string)
	return s
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}

// coerceNumber accepts JSON numbers and numeric strings such as "100€",
// "-50", "1,000" or "12,5".
func coerceNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		negative := strings.HasPrefix(s, "-")
		s = reNonNumeric.ReplaceAllString(s, "")
		if strings.Contains(s, ",") {
			last := s[strings.LastIndex(s, ",")+1:]
			if !strings.Contains(s, ".") && len(last) != 3 {
				s = strings.ReplaceAll(s, ",", ".")
			} else {
				s = strings.ReplaceAll(s, ",", "")
			}
		}
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		if negative {
			f = -f
		}
		return f, true
	default:
		return 0, false
	}
}

func normalizeDirection(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase", "raise", "up", "add", "+", "plus", "αύξηση":
		return model.DirectionIncrease
	case "decrease", "reduce", "lower", "down", "subtract", "-", "minus", "μείωση":
		return model.DirectionDecrease
	default:
		return ""
	}
}

func normalizePriceType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "sale_price", "saleprice", "offer":
		return model.PriceTypeSale
	default:
		return model.PriceTypeRegular
	}
}

// normalizeWidth reduces a width filter to its first number ("200cm" -> "200"),
// or to "all" for the catch-all spellings.
func normalizeWidth(v any) string {
	s := strings.ToLower(strings.TrimSpace(stringValue(v)))
	switch s {
	case "":
		return ""
	case "all", "any", "*", "όλα", "ολα":
		return model.WidthFilterAll
	}
	if n := reFirstInt.FindString(s); n != "" {
		return n
	}
	return s
}

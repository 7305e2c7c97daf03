package prompts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/catalog-assistant/server/internal/agent/graph/actions"
	"github.com/catalog-assistant/server/internal/agent/model"
)

const (
	descriptionPreviewRunes = 600
	noWidthGroup            = "other"
)

// FormatSnapshot renders the catalog snapshot for the model. Variations are
// grouped by their width-like attribute, each line carrying id, attributes,
// prices and stock.
func FormatSnapshot(snap *model.CatalogSnapshot, queries []string, currency string) string {
	if snap == nil {
		if len(queries) == 0 {
			return "No product could be identified in the instruction, so no catalog data was loaded."
		}
		return fmt.Sprintf("No products were found in the catalog for: %s.", strings.Join(queries, ", "))
	}

	var b strings.Builder
	p := snap.Product
	fmt.Fprintf(&b, "Product #%d %q (type: %s, price: %s %s)\n", p.ID, p.Name, orDash(p.Type), money(p.Price), currency)
	if s := strings.TrimSpace(p.ShortDescription); s != "" {
		fmt.Fprintf(&b, "Current short description: %s\n", truncate(s))
	}
	if s := strings.TrimSpace(p.Description); s != "" {
		fmt.Fprintf(&b, "Current description: %s\n", truncate(s))
	}

	switch {
	case snap.VariationsUnavailable:
		b.WriteString("Variations could not be loaded for this product.\n")
	case len(snap.Variations) == 0:
		b.WriteString("This product has no variations.\n")
	default:
		groups, order := groupByWidth(snap.Variations)
		fmt.Fprintf(&b, "Variations (%d), grouped by width:\n", len(snap.Variations))
		for _, width := range order {
			fmt.Fprintf(&b, "[%s]\n", width)
			for _, v := range groups[width] {
				fmt.Fprintf(&b, "- #%d %s | regular %s | sale %s | price %s | %s\n",
					v.ID, attributes(v), money(v.RegularPrice), saleMoney(v.SalePrice), money(v.Price), orDash(v.StockStatus))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func groupByWidth(variations []model.Variation) (map[string][]model.Variation, []string) {
	groups := map[string][]model.Variation{}
	var order []string
	for _, v := range variations {
		width := actions.WidthOf(v)
		if width == "" {
			width = noWidthGroup
		}
		if _, ok := groups[width]; !ok {
			order = append(order, width)
		}
		groups[width] = append(groups[width], v)
	}
	sort.SliceStable(order, func(i, j int) bool { return widthLess(order[i], order[j]) })
	return groups, order
}

// widthLess orders numeric widths numerically and puts everything else after them.
func widthLess(a, b string) bool {
	na, errA := strconv.Atoi(leadingDigits(a))
	nb, errB := strconv.Atoi(leadingDigits(b))
	switch {
	case errA == nil && errB == nil && na != nb:
		return na < nb
	case errA == nil && errB != nil:
		return true
	case errA != nil && errB == nil:
		return false
	}
	return a < b
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func attributes(v model.Variation) string {
	names := v.AttributeNames()
	if len(names) == 0 {
		return "(no attributes)"
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+v.Attributes[name])
	}
	return strings.Join(parts, ", ")
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func saleMoney(v float64) string {
	if v <= 0 {
		return "-"
	}
	return money(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= descriptionPreviewRunes {
		return s
	}
	return string([]rune(s)[:descriptionPreviewRunes]) + "..."
}

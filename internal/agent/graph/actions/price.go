package actions

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

// summaryItems is how many line items a summary lists before "and N more".
const summaryItems = 5

// ErrNoMatchingVariations is returned when the width filter leaves nothing to change.
var ErrNoMatchingVariations = errors.New("no variations match the width filter")

// MaterializePriceChange recomputes a price change for every variation that
// passes the width filter. New prices never go below zero.
func MaterializePriceChange(in model.PriceChangeIntent, snap *model.CatalogSnapshot, instruction string) (*model.MaterializedAction, error) {
	if snap == nil {
		return nil, errx.Wrap(errx.ErrUnresolvableProduct, nil)
	}
	width := ResolveWidthFilter(in.WidthFilter, instruction)
	targets := FilterByWidth(snap.Variations, width)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrNoMatchingVariations, width, snap.Product.Name)
	}

	direction := in.Direction
	if direction != model.DirectionDecrease {
		direction = model.DirectionIncrease
	}
	priceType := in.PriceType
	if priceType != model.PriceTypeSale {
		priceType = model.PriceTypeRegular
	}
	amount := model.Cents(math.Abs(in.ChangeAmount))

	items := make([]model.PriceChangeItem, 0, len(targets))
	for _, v := range targets {
		oldPrice := model.Cents(basePrice(v, priceType))
		newPrice := oldPrice + amount
		if direction == model.DirectionDecrease {
			newPrice = max(oldPrice-amount, 0)
		}
		items = append(items, model.PriceChangeItem{
			VariationID: v.ID,
			DisplayName: DisplayName(v),
			OldPrice:    oldPrice,
			NewPrice:    newPrice,
		})
	}

	details := model.PriceChangeDetails{
		ProductID:    snap.Product.ID,
		ProductName:  snap.Product.Name,
		PriceType:    priceType,
		Direction:    direction,
		ChangeAmount: amount,
		WidthFilter:  width,
		Items:        items,
	}
	return &model.MaterializedAction{
		Type: model.ActionBulkUpdatePrice,
		Description: fmt.Sprintf("%s %s price by %s on %d variation(s) of %s",
			verb(direction), priceType, details.ChangeAmount, len(items), details.ProductName),
		Details: details,
		Status:  model.StatusPending,
		Summary: priceSummary(details),
	}, nil
}

// basePrice prefers the requested price field and falls back to the effective price.
func basePrice(v model.Variation, priceType string) float64 {
	if priceType == model.PriceTypeSale && v.SalePrice > 0 {
		return v.SalePrice
	}
	if priceType == model.PriceTypeRegular && v.RegularPrice > 0 {
		return v.RegularPrice
	}
	return v.Price
}

func verb(direction string) string {
	if direction == model.DirectionDecrease {
		return "Decrease"
	}
	return "Increase"
}

func priceSummary(d model.PriceChangeDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposed %s of the %s price by %s for %q (%d variation(s)):\n",
		strings.ToLower(verb(d.Direction)), d.PriceType, d.ChangeAmount, d.ProductName, len(d.Items))
	for i, item := range d.Items {
		if i == summaryItems {
			break
		}
		fmt.Fprintf(&b, "- %s: %s → %s\n", item.DisplayName, item.OldPrice, item.NewPrice)
	}
	writeRemainder(&b, len(d.Items))
	b.WriteString("Approve to apply these changes.")
	return b.String()
}

func writeRemainder(b *strings.Builder, total int) {
	if total > summaryItems {
		fmt.Fprintf(b, "...and %d more\n", total-summaryItems)
	}
}

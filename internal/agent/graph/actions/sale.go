package actions

import (
	"fmt"
	"math"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

// DefaultRegularPriceIncrease applies when the instruction names no increase.
const DefaultRegularPriceIncrease = 100.0

// MaterializeSaleConversion moves each variation's current regular price into
// the sale price and raises the regular price by the increase.
func MaterializeSaleConversion(in model.SaleConversionIntent, snap *model.CatalogSnapshot, instruction string) (*model.MaterializedAction, error) {
	if snap == nil {
		return nil, errx.Wrap(errx.ErrUnresolvableProduct, nil)
	}
	increase := DefaultRegularPriceIncrease
	if in.HasIncrease {
		increase = math.Abs(in.RegularPriceIncrease)
	}
	increaseCents := model.Cents(increase)

	width := ResolveWidthFilter(in.WidthFilter, instruction)
	targets := FilterByWidth(snap.Variations, width)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrNoMatchingVariations, width, snap.Product.Name)
	}

	items := make([]model.SaleConversionItem, 0, len(targets))
	for _, v := range targets {
		current := model.Cents(basePrice(v, model.PriceTypeRegular))
		items = append(items, model.SaleConversionItem{
			VariationID:         v.ID,
			DisplayName:         DisplayName(v),
			CurrentRegularPrice: current,
			NewRegularPrice:     current + increaseCents,
			NewSalePrice:        current,
		})
	}

	details := model.SaleConversionDetails{
		ProductID:            snap.Product.ID,
		ProductName:          snap.Product.Name,
		RegularPriceIncrease: increaseCents,
		WidthFilter:          width,
		Items:                items,
	}
	return &model.MaterializedAction{
		Type: model.ActionConvertToSale,
		Description: fmt.Sprintf("Put %d variation(s) of %s on sale, regular price +%s",
			len(items), details.ProductName, details.RegularPriceIncrease),
		Details: details,
		Status:  model.StatusPending,
		Summary: saleSummary(details),
	}, nil
}

func saleSummary(d model.SaleConversionDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposed sale for %q (%d variation(s)): current regular price becomes the sale price, regular price +%s.\n",
		d.ProductName, len(d.Items), d.RegularPriceIncrease)
	for i, item := range d.Items {
		if i == summaryItems {
			break
		}
		fmt.Fprintf(&b, "- %s: regular %s, sale %s\n", item.DisplayName, item.NewRegularPrice, item.NewSalePrice)
	}
	writeRemainder(&b, len(d.Items))
	b.WriteString("Approve to apply these changes.")
	return b.String()
}

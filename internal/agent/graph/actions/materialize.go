package actions

import (
	"fmt"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

// Materialize dispatches an intent to its materialization routine. The
// snapshot is the single source of truth for ids, names and prices.
func Materialize(intent model.ActionIntent, snap *model.CatalogSnapshot, instruction string) (*model.MaterializedAction, error) {
	switch in := intent.(type) {
	case model.PriceChangeIntent:
		return MaterializePriceChange(in, snap, instruction)
	case model.SaleConversionIntent:
		return MaterializeSaleConversion(in, snap, instruction)
	case model.DescriptionIntent:
		return MaterializeDescription(in, snap)
	case nil:
		return nil, nil
	default:
		return nil, errx.Wrap(errx.ErrInvalidActionType, fmt.Errorf("intent %T", intent))
	}
}

// IntentProductName returns the product name the generator attached to intent.
func IntentProductName(intent model.ActionIntent) string {
	switch in := intent.(type) {
	case model.PriceChangeIntent:
		return in.ProductName
	case model.SaleConversionIntent:
		return in.ProductName
	case model.DescriptionIntent:
		return in.ProductName
	default:
		return ""
	}
}

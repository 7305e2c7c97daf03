package model

// ActionType is the wire name of an action kind.
type ActionType string

const (
	ActionPriceUpdate       ActionType = "price_update"
	ActionBulkUpdatePrice   ActionType = "bulk_update_price"
	ActionConvertToSale     ActionType = "convert_to_sale"
	ActionUpdateDescription ActionType = "update_description"
)

// allowedActionTypes is the only set of action types that may leave the service.
var allowedActionTypes = map[ActionType]struct{}{
	ActionPriceUpdate:       {},
	ActionBulkUpdatePrice:   {},
	ActionConvertToSale:     {},
	ActionUpdateDescription: {},
}

// IsAllowed reports whether t is in the output allowlist.
func (t ActionType) IsAllowed() bool {
	_, ok := allowedActionTypes[t]
	return ok
}

const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"

	PriceTypeRegular = "regular"
	PriceTypeSale    = "sale"

	// WidthFilterAll disables variation filtering.
	WidthFilterAll = "all"
)

// ActionIntent is the generator's advisory classification, normalized into one
// of the concrete intent types below. Numbers and identifiers it carries are
// never copied into a MaterializedAction without being recomputed.
type ActionIntent interface {
	IntentType() ActionType
}

// PriceChangeIntent covers both price_update and bulk_update_price.
type PriceChangeIntent struct {
	ChangeAmount float64
	Direction    string
	PriceType    string
	WidthFilter  string
	ProductName  string
}

func (PriceChangeIntent) IntentType() ActionType { return ActionBulkUpdatePrice }

// SaleConversionIntent turns the regular price into the sale price and raises
// the regular price.
type SaleConversionIntent struct {
	RegularPriceIncrease float64
	HasIncrease          bool
	WidthFilter          string
	ProductName          string
}

func (SaleConversionIntent) IntentType() ActionType { return ActionConvertToSale }

// DescriptionIntent carries generator-authored free text, the only generated
// content passed through verbatim.
type DescriptionIntent struct {
	ProductName      string
	Description      string
	ShortDescription string
	MetaTitle        string
	MetaDescription  string
}

func (DescriptionIntent) IntentType() ActionType { return ActionUpdateDescription }

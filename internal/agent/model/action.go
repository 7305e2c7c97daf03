package model

// StatusPending is the only lifecycle state produced here.
const StatusPending = "pending"

// MaterializedAction is a mutation proposal recomputed from catalog data.
type MaterializedAction struct {
	Type        ActionType    `json:"type"`
	Description string        `json:"description"`
	Details     ActionDetails `json:"details"`
	Status      string        `json:"status"`
	// Summary is the operator-facing message that lists the line items.
	Summary string `json:"-"`
}

// ActionDetails is implemented by the three details payloads.
type ActionDetails interface {
	actionDetails()
}

type PriceChangeItem struct {
	VariationID int64  `json:"variationId"`
	DisplayName string `json:"displayName"`
	OldPrice    Money  `json:"oldPrice"`
	NewPrice    Money  `json:"newPrice"`
}

type PriceChangeDetails struct {
	ProductID    int64             `json:"productId"`
	ProductName  string            `json:"productName"`
	PriceType    string            `json:"priceType"`
	Direction    string            `json:"direction"`
	ChangeAmount Money             `json:"changeAmount"`
	WidthFilter  string            `json:"widthFilter"`
	Items        []PriceChangeItem `json:"items"`
}

func (PriceChangeDetails) actionDetails() {}

type SaleConversionItem struct {
	VariationID         int64  `json:"variationId"`
	DisplayName         string `json:"displayName"`
	CurrentRegularPrice Money  `json:"currentRegularPrice"`
	NewRegularPrice     Money  `json:"newRegularPrice"`
	NewSalePrice        Money  `json:"newSalePrice"`
}

type SaleConversionDetails struct {
	ProductID            int64                `json:"productId"`
	ProductName          string               `json:"productName"`
	RegularPriceIncrease Money                `json:"regularPriceIncrease"`
	WidthFilter          string               `json:"widthFilter"`
	Items                []SaleConversionItem `json:"items"`
}

func (SaleConversionDetails) actionDetails() {}

type DescriptionContent struct {
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	MetaTitle        string `json:"metaTitle,omitempty"`
	MetaDescription  string `json:"metaDescription,omitempty"`
}

type DescriptionDetails struct {
	ProductID   int64              `json:"productId"`
	ProductName string             `json:"productName"`
	Current     DescriptionContent `json:"current"`
	Proposed    DescriptionContent `json:"proposed"`
}

func (DescriptionDetails) actionDetails() {}

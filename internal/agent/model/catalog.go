package model

import (
	"context"
	"sort"
	"strings"
)

// CatalogCredentials are the catalog-backend access parameters of one business.
type CatalogCredentials struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

// Valid reports whether all fields needed to reach the catalog are present.
func (c CatalogCredentials) Valid() bool {
	return strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.ConsumerKey) != "" &&
		strings.TrimSpace(c.ConsumerSecret) != ""
}

// CredentialResolver maps a business to its catalog credentials.
type CredentialResolver interface {
	ResolveCredentials(ctx context.Context, businessID string) (CatalogCredentials, error)
}

// CatalogClient is the read surface of the catalog backend.
type CatalogClient interface {
	Search(ctx context.Context, query string, pageSize int) ([]CatalogProduct, error)
	Detail(ctx context.Context, productID int64) (CatalogProduct, error)
	Variations(ctx context.Context, productID int64, pageSize int) ([]Variation, error)
}

// CatalogClientFactory builds a client bound to one business' credentials.
type CatalogClientFactory func(CatalogCredentials) CatalogClient

// CatalogProduct is a read-only view of a catalog product. Description fields
// are only filled by Detail.
type CatalogProduct struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Type             string  `json:"type"`
	Description      string  `json:"description,omitempty"`
	ShortDescription string  `json:"shortDescription,omitempty"`
}

// Variation is one purchasable variant of a product.
type Variation struct {
	ID           int64             `json:"id"`
	Attributes   map[string]string `json:"attributes"`
	RegularPrice float64           `json:"regularPrice"`
	SalePrice    float64           `json:"salePrice"`
	Price        float64           `json:"price"`
	StockStatus  string            `json:"stockStatus"`
}

// AttributeNames returns attribute names in canonical (sorted) order.
func (v Variation) AttributeNames() []string {
	names := make([]string, 0, len(v.Attributes))
	for name := range v.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CatalogSnapshot is what was read from the catalog for the current request.
type CatalogSnapshot struct {
	// Query is the candidate query that produced the product.
	Query      string
	Product    CatalogProduct
	Variations []Variation
	// VariationsUnavailable is set when the variation fetch failed.
	VariationsUnavailable bool
}

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

const (
	apiPrefix        = "/wp-json/wc/v3"
	maxResponseBytes = 8 << 20
)

// WooClient reads products from a WooCommerce REST v3 store.
type WooClient struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
}

var _ model.CatalogClient = (*WooClient)(nil)

// NewWooClient builds a client for one store. A nil httpClient gets a
// client with the given timeout.
func NewWooClient(creds model.CatalogCredentials, httpClient *http.Client, timeout time.Duration) *WooClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/")
	base = strings.TrimSuffix(base, apiPrefix)
	return &WooClient{
		baseURL: base + apiPrefix,
		key:     creds.ConsumerKey,
		secret:  creds.ConsumerSecret,
		http:    httpClient,
	}
}

// NewWooFactory adapts NewWooClient to model.CatalogClientFactory.
func NewWooFactory(cfg model.CatalogConfig) model.CatalogClientFactory {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	httpClient := &http.Client{Timeout: timeout}
	return func(creds model.CatalogCredentials) model.CatalogClient {
		return NewWooClient(creds, httpClient, timeout)
	}
}

type wooAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

type wooProduct struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Price            price  `json:"price"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
}

type wooVariation struct {
	ID           int64          `json:"id"`
	Attributes   []wooAttribute `json:"attributes"`
	RegularPrice price          `json:"regular_price"`
	SalePrice    price          `json:"sale_price"`
	Price        price          `json:"price"`
	StockStatus  string         `json:"stock_status"`
}

// price accepts "12.50", 12.5, "" and null.
type price float64

func (p *price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*p = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("price %q: %w", raw, err)
	}
	*p = price(f)
	return nil
}

func (w wooProduct) toModel() model.CatalogProduct {
	return model.CatalogProduct{
		ID:               w.ID,
		Name:             w.Name,
		Price:            float64(w.Price),
		Type:             w.Type,
		Description:      w.Description,
		ShortDescription: w.ShortDescription,
	}
}

func (w wooVariation) toModel() model.Variation {
	attrs := make(map[string]string, len(w.Attributes))
	for _, a := range w.Attributes {
		attrs[a.Name] = a.Option
	}
	return model.Variation{
		ID:           w.ID,
		Attributes:   attrs,
		RegularPrice: float64(w.RegularPrice),
		SalePrice:    float64(w.SalePrice),
		Price:        float64(w.Price),
		StockStatus:  w.StockStatus,
	}
}

// Search lists products matching query.
func (c *WooClient) Search(ctx context.Context, query string, pageSize int) ([]model.CatalogProduct, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(pageSize))

	var raw []wooProduct
	if err := c.get(ctx, "/products", params, &raw); err != nil {
		return nil, err
	}
	products := make([]model.CatalogProduct, 0, len(raw))
	for _, p := range raw {
		products = append(products, p.toModel())
	}
	return products, nil
}

// Detail fetches one product including its description fields.
func (c *WooClient) Detail(ctx context.Context, productID int64) (model.CatalogProduct, error) {
	var raw wooProduct
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), nil, &raw); err != nil {
		return model.CatalogProduct{}, err
	}
	return raw.toModel(), nil
}

// Variations lists a product's variations. Simple products answer with an
// empty list.
func (c *WooClient) Variations(ctx context.Context, productID int64, pageSize int) ([]model.Variation, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(pageSize))

	var raw []wooVariation
	if err := c.get(ctx, fmt.Sprintf("/products/%d/variations", productID), params, &raw); err != nil {
		return nil, err
	}
	variations := make([]model.Variation, 0, len(raw))
	for _, v := range raw {
		variations = append(variations, v.toModel())
	}
	return variations, nil
}

func (c *WooClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("consumer_key", c.key)
	params.Set("consumer_secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return errx.Wrap(errx.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errx.Wrap(errx.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errx.Wrap(errx.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errx.Wrap(errx.ErrUpstreamUnavailable, fmt.Errorf("GET %s: status %d", path, resp.StatusCode))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errx.Wrap(errx.ErrUpstreamUnavailable, fmt.Errorf("GET %s: decode: %w", path, err))
	}
	return nil
}

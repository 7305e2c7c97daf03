package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// Resolver turns candidate queries into a catalog snapshot.
type Resolver struct {
	searchPageSize    int
	variationPageSize int
	fallbackKeywords  []string
}

func NewResolver(cfg model.CatalogConfig) *Resolver {
	r := &Resolver{
		searchPageSize:    cfg.SearchPageSize,
		variationPageSize: cfg.VariationPageSize,
	}
	if r.searchPageSize <= 0 {
		r.searchPageSize = 10
	}
	if r.variationPageSize <= 0 {
		r.variationPageSize = 100
	}
	for _, kw := range cfg.FallbackKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			r.fallbackKeywords = append(r.fallbackKeywords, kw)
		}
	}
	return r
}

// Resolve searches the plan's queries in order and stops at the first one
// with results. It returns (nil, nil) when nothing matched, and an
// ErrUpstreamUnavailable error when every search failed.
func (r *Resolver) Resolve(ctx context.Context, client model.CatalogClient, plan model.QueryPlan, instruction string) (*model.CatalogSnapshot, error) {
	return r.cascade(ctx, client, plan.Queries, plan.ModelTokens, instruction)
}

// ResolveByName is the late resolution path: the product name the generator
// declared, then the fallback keywords that occur in the instruction.
func (r *Resolver) ResolveByName(ctx context.Context, client model.CatalogClient, name, instruction string) (*model.CatalogSnapshot, error) {
	queries := r.FallbackQueries(name, instruction)
	if len(queries) == 0 {
		return nil, nil
	}
	var tokens []string
	if name = strings.TrimSpace(name); name != "" {
		tokens = []string{name}
	}
	return r.cascade(ctx, client, queries, tokens, instruction)
}

// FallbackQueries lists the queries ResolveByName would try.
func (r *Resolver) FallbackQueries(name, instruction string) []string {
	var queries []string
	seen := map[string]bool{}
	add := func(q string) {
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			return
		}
		seen[key] = true
		queries = append(queries, q)
	}
	add(strings.TrimSpace(name))
	text := strings.ToLower(instruction)
	for _, kw := range r.fallbackKeywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			add(kw)
		}
	}
	return queries
}

func (r *Resolver) cascade(ctx context.Context, client model.CatalogClient, queries, modelTokens []string, instruction string) (*model.CatalogSnapshot, error) {
	var errs []error
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errx.Wrap(errx.ErrUpstreamUnavailable, err)
		}
		results, err := client.Search(ctx, query, r.searchPageSize)
		if err != nil {
			logx.Warn().Err(err).Str("query", query).Msg("catalog search failed")
			errs = append(errs, fmt.Errorf("search %q: %w", query, err))
			continue
		}
		if len(results) == 0 {
			logx.Debug().Str("query", query).Msg("catalog search returned nothing")
			continue
		}
		hit := Disambiguate(results, modelTokens, instruction)
		logx.Info().Str("query", query).Int64("product_id", hit.ID).Str("product", hit.Name).
			Int("hits", len(results)).Msg("catalog product resolved")
		return r.fetch(ctx, client, query, hit), nil
	}
	if len(queries) > 0 && len(errs) == len(queries) {
		return nil, errx.Wrap(errx.ErrUpstreamUnavailable, errors.Join(errs...))
	}
	return nil, nil
}

// fetch loads detail and variations concurrently. Either call may fail
// without failing the snapshot. The group has no context, so one failure
// never cancels the other call.
func (r *Resolver) fetch(ctx context.Context, client model.CatalogClient, query string, hit model.CatalogProduct) *model.CatalogSnapshot {
	var (
		detail        model.CatalogProduct
		variations    []model.Variation
		detailErr     error
		variationsErr error
		g             errgroup.Group
	)
	g.Go(func() error {
		detail, detailErr = client.Detail(ctx, hit.ID)
		return detailErr
	})
	// Variations are requested even for "simple" products; the reported type is not reliable.
	g.Go(func() error {
		variations, variationsErr = client.Variations(ctx, hit.ID, r.variationPageSize)
		return variationsErr
	})
	if err := g.Wait(); err != nil {
		logx.Debug().Err(err).Int64("product_id", hit.ID).Msg("catalog fetch degraded")
	}

	snap := &model.CatalogSnapshot{Query: query, Product: hit}
	if detailErr != nil {
		logx.Warn().Err(detailErr).Int64("product_id", hit.ID).Msg("catalog detail failed, using search hit")
	} else {
		snap.Product = mergeDetail(hit, detail)
	}
	if variationsErr != nil {
		logx.Warn().Err(variationsErr).Int64("product_id", hit.ID).Msg("catalog variations failed, product-only snapshot")
		snap.VariationsUnavailable = true
	} else {
		snap.Variations = variations
	}
	return snap
}

func mergeDetail(hit, detail model.CatalogProduct) model.CatalogProduct {
	if detail.ID == 0 {
		detail.ID = hit.ID
	}
	if detail.Name == "" {
		detail.Name = hit.Name
	}
	if detail.Type == "" {
		detail.Type = hit.Type
	}
	if detail.Price == 0 {
		detail.Price = hit.Price
	}
	return detail
}

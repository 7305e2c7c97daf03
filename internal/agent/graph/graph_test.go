package graph

import (
	"context"
	"errors"
	"net/http"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-assistant/server/internal/agent/graph/nodes"
	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

type stubCredentials struct{ err error }

func (s stubCredentials) ResolveCredentials(context.Context, string) (model.CatalogCredentials, error) {
	if s.err != nil {
		return model.CatalogCredentials{}, s.err
	}
	return model.CatalogCredentials{BaseURL: "https://shop", ConsumerKey: "k", ConsumerSecret: "s"}, nil
}

type stubCatalog struct {
	products   map[string][]model.CatalogProduct
	variations map[int64][]model.Variation
	searchErr  error
}

func (s *stubCatalog) Search(_ context.Context, query string, _ int) ([]model.CatalogProduct, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.products[query], nil
}

func (s *stubCatalog) Detail(_ context.Context, id int64) (model.CatalogProduct, error) {
	for _, list := range s.products {
		for _, p := range list {
			if p.ID == id {
				p.Description = "<p>Current</p>"
				return p, nil
			}
		}
	}
	return model.CatalogProduct{}, errors.New("not found")
}

func (s *stubCatalog) Variations(_ context.Context, id int64, _ int) ([]model.Variation, error) {
	return s.variations[id], nil
}

type scriptedModel struct {
	reply string
	err   error
	calls int
}

func (m *scriptedModel) Generate(context.Context, []*schema.Message, ...einomodel.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func storeCatalog() *stubCatalog {
	return &stubCatalog{
		products: map[string][]model.CatalogProduct{
			"Venice": {{ID: 42, Name: "Venice Mattress", Type: "simple", Price: 500}},
			"Diana":  {{ID: 7, Name: "Diana Mattress", Type: "variable", Price: 300}},
		},
		variations: map[int64][]model.Variation{
			42: {
				{ID: 421, Attributes: map[string]string{"pa_width": "160", "pa_color": "White"}, RegularPrice: 500, Price: 500},
				{ID: 422, Attributes: map[string]string{"pa_width": "200", "pa_color": "White"}, RegularPrice: 650, Price: 650},
				{ID: 423, Attributes: map[string]string{"pa_width": "200", "pa_color": "Grey"}, RegularPrice: 640.5, Price: 640.5},
			},
		},
	}
}

func newRunner(t *testing.T, creds model.CredentialResolver, cat model.CatalogClient, chat einomodel.BaseChatModel) Runner {
	t.Helper()
	runner, err := BuildPipeline(t.Context(), Config{
		Credentials:   creds,
		ClientFactory: func(model.CatalogCredentials) model.CatalogClient { return cat },
		ChatModel:     chat,
		ModelName:     "gemini-2.5-flash",
		Context:       model.ContextConfig{HistoryWindow: 4, ShortInstruction: 40, MaxCandidateQueries: 8},
		Catalog:       model.CatalogConfig{SearchPageSize: 10, VariationPageSize: 100, FallbackKeywords: []string{"venice", "diana"}},
		Prompt:        model.PromptConfig{StoreName: "Sleepwell", Language: "English", Currency: "EUR"},
	})
	require.NoError(t, err)
	return runner
}

func request(message string) model.AssistantRequest {
	return model.AssistantRequest{Message: message, BusinessID: "b1"}
}

func TestInformationalQuestionHasNoAction(t *testing.T) {
	chat := &scriptedModel{reply: `{"message":"Diana is a medium-firm mattress."}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("what is the description of Diana"))
	require.NoError(t, err)
	assert.Equal(t, "Diana is a medium-firm mattress.", resp.Message)
	assert.Nil(t, resp.Action)
}

func TestPriceUpdateIsRecomputedFromCatalog(t *testing.T) {
	// The model's own numbers in the message are ignored.
	chat := &scriptedModel{reply: `{"message":"Done, new price 9999","action":{"type":"price_update","changeAmount":100,"changeDirection":"increase","filterWidth":"200"}}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("raise Venice 200 price by 100"))
	require.NoError(t, err)
	require.NotNil(t, resp.Action)

	assert.Equal(t, model.ActionBulkUpdatePrice, resp.Action.Type)
	assert.Equal(t, model.StatusPending, resp.Action.Status)
	details := resp.Action.Details.(model.PriceChangeDetails)
	assert.Equal(t, int64(42), details.ProductID)
	require.Len(t, details.Items, 2)
	for _, item := range details.Items {
		assert.Equal(t, item.OldPrice+model.Cents(100), item.NewPrice)
	}
	assert.Equal(t, int64(422), details.Items[0].VariationID)
	assert.Equal(t, int64(423), details.Items[1].VariationID)
	assert.NotContains(t, resp.Message, "9999")
	assert.Contains(t, resp.Message, "650.00 → 750.00")
}

func TestPriceUpdateIsDeterministic(t *testing.T) {
	chat := &scriptedModel{reply: `{"action":{"type":"bulk_update_price","changeAmount":"25","changeDirection":"decrease"}}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	first, err := runner.Handle(t.Context(), request("lower Venice by 25"))
	require.NoError(t, err)
	second, err := runner.Handle(t.Context(), request("lower Venice by 25"))
	require.NoError(t, err)
	assert.Equal(t, first.Action, second.Action)
}

func TestTruncatedDescriptionIsRecovered(t *testing.T) {
	chat := &scriptedModel{reply: `{"message":"Here is the new copy","action":{"type":"update_description","productName":"Diana","description": "Some text`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("write a new description for Diana"))
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, model.ActionUpdateDescription, resp.Action.Type)
	details := resp.Action.Details.(model.DescriptionDetails)
	assert.Equal(t, "Some text", details.Proposed.Description)
	assert.Equal(t, "<p>Current</p>", details.Current.Description)
	assert.Equal(t, int64(7), details.ProductID)
	assert.NotEmpty(t, resp.Message)
}

func TestAllSearchesFailing(t *testing.T) {
	cat := storeCatalog()
	cat.searchErr = errors.New("connection refused")
	chat := &scriptedModel{reply: `{"message":"unused"}`}
	runner := newRunner(t, stubCredentials{}, cat, chat)

	resp, err := runner.Handle(t.Context(), request("raise Venice 200 price by 100"))
	require.NoError(t, err)
	assert.Nil(t, resp.Action)
	assert.Equal(t, "I could not find any products in the catalog matching: Venice.", resp.Message)
	assert.Zero(t, chat.calls)
}

func TestMissingCredentialsIsInformational(t *testing.T) {
	chat := &scriptedModel{reply: `{"message":"unused"}`}
	runner := newRunner(t, stubCredentials{err: errx.Wrap(errx.ErrConfiguration, nil)}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("raise Venice 200 price by 100"))
	require.NoError(t, err)
	assert.Equal(t, nodes.MessageCatalogNotConnected, resp.Message)
	assert.Nil(t, resp.Action)
	assert.Zero(t, chat.calls)
}

func TestGenerationFailureDegrades(t *testing.T) {
	runner := newRunner(t, stubCredentials{}, storeCatalog(), &scriptedModel{err: errors.New("503")})

	resp, err := runner.Handle(t.Context(), request("raise Venice 200 price by 100"))
	require.NoError(t, err)
	assert.Equal(t, nodes.MessageGenerationFailed, resp.Message)
	assert.Nil(t, resp.Action)
}

func TestUnknownActionTypeIsDropped(t *testing.T) {
	chat := &scriptedModel{reply: `{"message":"Deleting it now","action":{"type":"delete_product","productName":"Venice"}}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("delete Venice"))
	require.NoError(t, err)
	assert.Nil(t, resp.Action)
	assert.Equal(t, "Deleting it now", resp.Message)
}

func TestNoMatchingWidthAddsNote(t *testing.T) {
	chat := &scriptedModel{reply: `{"message":"ok","action":{"type":"price_update","changeAmount":10,"filterWidth":"180"}}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("raise Venice 180 by 10"))
	require.NoError(t, err)
	assert.Nil(t, resp.Action)
	assert.Contains(t, resp.Message, `No variations of Venice Mattress match width "180"`)
}

func TestFallbackResolutionByDeclaredName(t *testing.T) {
	// No Latin token or category in the instruction, so nothing is searched up front.
	chat := &scriptedModel{reply: `{"action":{"type":"convert_to_sale","productName":"Venice"}}`}
	runner := newRunner(t, stubCredentials{}, storeCatalog(), chat)

	resp, err := runner.Handle(t.Context(), request("βάλε το σε προσφορά"))
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	details := resp.Action.Details.(model.SaleConversionDetails)
	assert.Equal(t, int64(42), details.ProductID)
	assert.Len(t, details.Items, 3)
	for _, item := range details.Items {
		assert.Equal(t, item.CurrentRegularPrice, item.NewSalePrice)
		assert.Equal(t, item.NewSalePrice+model.Cents(100), item.NewRegularPrice)
	}
}

func TestMissingBusinessID(t *testing.T) {
	runner := newRunner(t, stubCredentials{}, storeCatalog(), &scriptedModel{})

	_, err := runner.Handle(t.Context(), model.AssistantRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
}

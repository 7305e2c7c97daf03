package prompts

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-assistant/server/internal/agent/model"
)

func TestRenderIntentMessages(t *testing.T) {
	cfg := model.PromptConfig{StoreName: "Sleepwell", Language: "Greek", Currency: "EUR"}
	msgs, err := RenderIntentMessages(t.Context(), cfg, model.QueryPlan{}, "what is the description of Diana", nil)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	system := msgs[0].Content
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, system, "Sleepwell")
	assert.Contains(t, system, "Answer in Greek")
	assert.NotContains(t, system, "{store_name}")
	assert.Contains(t, system, `"type": "price_update"`)
	assert.Contains(t, system, "convert_to_sale")
	assert.Contains(t, system, "update_description")
	assert.Contains(t, system, "Informational answers return message only, no action")

	assert.Contains(t, msgs[1].Content, "No product could be identified")
}

func TestFormatSnapshotGroupsByWidth(t *testing.T) {
	snap := &model.CatalogSnapshot{
		Product: model.CatalogProduct{ID: 42, Name: "Venice", Type: "variable", Price: 500, ShortDescription: "Firm"},
		Variations: []model.Variation{
			{ID: 3, Attributes: map[string]string{"Width": "200", "Color": "Grey"}, RegularPrice: 600, Price: 600, StockStatus: "instock"},
			{ID: 1, Attributes: map[string]string{"Width": "90"}, RegularPrice: 300, SalePrice: 250, Price: 250, StockStatus: "outofstock"},
			{ID: 2, Attributes: map[string]string{"Color": "White"}, RegularPrice: 100, Price: 100},
			{ID: 4, Attributes: map[string]string{"Width": "200", "Color": "White"}, RegularPrice: 610, Price: 610, StockStatus: "instock"},
		},
	}
	got := FormatSnapshot(snap, nil, "EUR")

	want := `Product #42 "Venice" (type: variable, price: 500.00 EUR)
Current short description: Firm
Variations (4), grouped by width:
[90]
- #1 Width=90 | regular 300.00 | sale 250.00 | price 250.00 | outofstock
[200]
- #3 Color=Grey, Width=200 | regular 600.00 | sale - | price 600.00 | instock
- #4 Color=White, Width=200 | regular 610.00 | sale - | price 610.00 | instock
[other]
- #2 Color=White | regular 100.00 | sale - | price 100.00 | -`
	assert.Equal(t, want, got)
}

func TestFormatSnapshotDegraded(t *testing.T) {
	snap := &model.CatalogSnapshot{Product: model.CatalogProduct{ID: 1, Name: "Roma"}, VariationsUnavailable: true}
	assert.Contains(t, FormatSnapshot(snap, nil, "EUR"), "Variations could not be loaded")
	assert.Equal(t, "No products were found in the catalog for: Venice, mattress.", FormatSnapshot(nil, []string{"Venice", "mattress"}, "EUR"))
}

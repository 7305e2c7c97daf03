package actions

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

func variation(id int64, color, width string, regular float64) model.Variation {
	return model.Variation{
		ID:           id,
		Attributes:   map[string]string{"pa_color": color, "pa_width": width},
		RegularPrice: regular,
		Price:        regular,
		StockStatus:  "instock",
	}
}

func veniceSnapshot() *model.CatalogSnapshot {
	return &model.CatalogSnapshot{
		Query:   "Venice",
		Product: model.CatalogProduct{ID: 42, Name: "Venice Mattress", Type: "variable", Description: "<p>Old</p>", ShortDescription: "Old short"},
		Variations: []model.Variation{
			variation(101, "White", "90", 300),
			variation(102, "White", "160", 500),
			variation(103, "Grey", "200", 600),
			variation(104, "Grey", "20", 19.99),
		},
	}
}

func TestPriceIncreaseForOneWidth(t *testing.T) {
	action, err := MaterializePriceChange(model.PriceChangeIntent{
		ChangeAmount: 100, Direction: model.DirectionIncrease, PriceType: model.PriceTypeRegular, WidthFilter: "160",
	}, veniceSnapshot(), "raise Venice 160 by 100")
	require.NoError(t, err)

	assert.Equal(t, model.ActionBulkUpdatePrice, action.Type)
	assert.Equal(t, model.StatusPending, action.Status)
	details := action.Details.(model.PriceChangeDetails)
	assert.Equal(t, int64(42), details.ProductID)
	assert.Equal(t, "Venice Mattress", details.ProductName)
	require.Len(t, details.Items, 1)
	assert.Equal(t, model.PriceChangeItem{VariationID: 102, DisplayName: "White - 160", OldPrice: model.Cents(500), NewPrice: model.Cents(600)}, details.Items[0])
	assert.Contains(t, action.Summary, "500.00 → 600.00")
}

func TestPriceDecreaseClampsAtZero(t *testing.T) {
	action, err := MaterializePriceChange(model.PriceChangeIntent{
		ChangeAmount: 1000, Direction: model.DirectionDecrease, WidthFilter: model.WidthFilterAll,
	}, veniceSnapshot(), "")
	require.NoError(t, err)

	for _, item := range action.Details.(model.PriceChangeDetails).Items {
		assert.Equal(t, model.Money(0), item.NewPrice, "variation %d", item.VariationID)
	}
}

func TestPriceArithmeticIsExact(t *testing.T) {
	action, err := MaterializePriceChange(model.PriceChangeIntent{
		ChangeAmount: 0.01, Direction: model.DirectionIncrease, WidthFilter: "all",
	}, veniceSnapshot(), "")
	require.NoError(t, err)

	items := action.Details.(model.PriceChangeDetails).Items
	require.Len(t, items, 4)
	assert.Equal(t, model.Cents(20), items[3].NewPrice)
}

func TestWidthFilterIsSubstringMatch(t *testing.T) {
	// "20" also selects the 200 variation; callers rely on this today.
	got := FilterByWidth(veniceSnapshot().Variations, "20")
	ids := make([]int64, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []int64{103, 104}, ids)
}

func TestWidthFilterIgnoresNonWidthAttributes(t *testing.T) {
	vars := []model.Variation{{ID: 1, Attributes: map[string]string{"pa_color": "160 Grey"}}}
	assert.Empty(t, FilterByWidth(vars, "160"))
	assert.Len(t, FilterByWidth(vars, "all"), 1)
}

func TestResolveWidthFilter(t *testing.T) {
	assert.Equal(t, "200", ResolveWidthFilter("200", "make the 160cm cheaper"))
	assert.Equal(t, "160", ResolveWidthFilter("", "make the 160cm cheaper"))
	assert.Equal(t, "90", ResolveWidthFilter("", "το 90 εκ να πάει +20"))
	assert.Equal(t, model.WidthFilterAll, ResolveWidthFilter("", "raise all Venice by 10"))
}

func TestNoMatchingVariations(t *testing.T) {
	_, err := MaterializePriceChange(model.PriceChangeIntent{ChangeAmount: 5, WidthFilter: "180"}, veniceSnapshot(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatchingVariations))
}

func TestMaterializeWithoutSnapshot(t *testing.T) {
	_, err := Materialize(model.PriceChangeIntent{ChangeAmount: 5}, nil, "")
	assert.True(t, errors.Is(err, errx.ErrUnresolvableProduct))
}

func TestSaleConversionDefaultsIncrease(t *testing.T) {
	action, err := MaterializeSaleConversion(model.SaleConversionIntent{WidthFilter: "all"}, veniceSnapshot(), "")
	require.NoError(t, err)

	assert.Equal(t, model.ActionConvertToSale, action.Type)
	details := action.Details.(model.SaleConversionDetails)
	assert.Equal(t, model.Cents(DefaultRegularPriceIncrease), details.RegularPriceIncrease)
	require.Len(t, details.Items, 4)
	for _, item := range details.Items {
		assert.Equal(t, item.CurrentRegularPrice, item.NewSalePrice)
		assert.Equal(t, model.Cents(DefaultRegularPriceIncrease), item.NewRegularPrice-item.NewSalePrice)
	}
}

func TestSaleConversionExplicitIncrease(t *testing.T) {
	action, err := MaterializeSaleConversion(model.SaleConversionIntent{
		RegularPriceIncrease: 150, HasIncrease: true, WidthFilter: "200",
	}, veniceSnapshot(), "")
	require.NoError(t, err)

	items := action.Details.(model.SaleConversionDetails).Items
	require.Len(t, items, 1)
	assert.Equal(t, model.SaleConversionItem{
		VariationID: 103, DisplayName: "Grey - 200", CurrentRegularPrice: model.Cents(600), NewRegularPrice: model.Cents(750), NewSalePrice: model.Cents(600),
	}, items[0])
}

func TestDescriptionUsesCatalogIdentity(t *testing.T) {
	action, err := MaterializeDescription(model.DescriptionIntent{
		ProductName:      "Venise",
		Description:      `<p class="lead">New</p>`,
		ShortDescription: "New short",
		MetaTitle:        "Venice | Store",
	}, veniceSnapshot())
	require.NoError(t, err)

	details := action.Details.(model.DescriptionDetails)
	assert.Equal(t, int64(42), details.ProductID)
	assert.Equal(t, "Venice Mattress", details.ProductName)
	assert.Equal(t, "<p>Old</p>", details.Current.Description)
	assert.Equal(t, `<p class="lead">New</p>`, details.Proposed.Description)
	assert.Equal(t, "Venice | Store", details.Proposed.MetaTitle)
}

func TestDescriptionRequiresContent(t *testing.T) {
	_, err := MaterializeDescription(model.DescriptionIntent{MetaTitle: "x"}, veniceSnapshot())
	assert.True(t, errors.Is(err, ErrEmptyDescription))
}

func TestMaterializeIsDeterministic(t *testing.T) {
	intent := model.PriceChangeIntent{ChangeAmount: 25, Direction: model.DirectionDecrease, WidthFilter: "all"}
	first, err := Materialize(intent, veniceSnapshot(), "")
	require.NoError(t, err)
	second, err := Materialize(intent, veniceSnapshot(), "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummaryListsFiveItems(t *testing.T) {
	snap := veniceSnapshot()
	snap.Variations = append(snap.Variations,
		variation(105, "Blue", "140", 450),
		variation(106, "Blue", "180", 550),
		variation(107, "Blue", "100", 350),
	)
	action, err := MaterializePriceChange(model.PriceChangeIntent{ChangeAmount: 10, WidthFilter: "all"}, snap, "")
	require.NoError(t, err)

	assert.Equal(t, 5, strings.Count(action.Summary, "\n- "))
	assert.Contains(t, action.Summary, "...and 2 more")
}

func TestDisplayNameFallbacks(t *testing.T) {
	assert.Equal(t, "Oak / King", DisplayName(model.Variation{ID: 1, Attributes: map[string]string{"finish": "Oak", "model": "King"}}))
	assert.Equal(t, "#9", DisplayName(model.Variation{ID: 9}))
	assert.Equal(t, "160", DisplayName(model.Variation{ID: 2, Attributes: map[string]string{"Πλάτος": "160"}}))
}

func TestPriceArithmeticOnNonRoundPrices(t *testing.T) {
	snap := &model.CatalogSnapshot{Product: model.CatalogProduct{ID: 7, Name: "Odd"}}
	for c := 1; c <= 200000; c += 3 {
		snap.Variations = append(snap.Variations, model.Variation{ID: int64(c), RegularPrice: float64(c) / 100})
	}
	snap.Variations = append(snap.Variations,
		model.Variation{ID: 900001, RegularPrice: 9.04},
		model.Variation{ID: 900002, RegularPrice: 28.01},
		model.Variation{ID: 900003, RegularPrice: 128.01},
		model.Variation{ID: 900004, RegularPrice: 1999.99},
	)

	price, err := MaterializePriceChange(model.PriceChangeIntent{ChangeAmount: 100, WidthFilter: "all"}, snap, "")
	require.NoError(t, err)
	for _, item := range price.Details.(model.PriceChangeDetails).Items {
		if item.NewPrice != item.OldPrice+model.Cents(100) {
			t.Fatalf("variation %d: %s + 100.00 != %s", item.VariationID, item.OldPrice, item.NewPrice)
		}
	}

	sale, err := MaterializeSaleConversion(model.SaleConversionIntent{WidthFilter: "all"}, snap, "")
	require.NoError(t, err)
	details := sale.Details.(model.SaleConversionDetails)
	for _, item := range details.Items {
		if item.NewRegularPrice-item.NewSalePrice != details.RegularPriceIncrease {
			t.Fatalf("variation %d: %s - %s != %s", item.VariationID, item.NewRegularPrice, item.NewSalePrice, details.RegularPriceIncrease)
		}
	}

	var odd model.SaleConversionItem
	for _, item := range details.Items {
		if item.VariationID == 900002 {
			odd = item
		}
	}
	assert.Equal(t, "28.01", odd.NewSalePrice.String())
	assert.Equal(t, "128.01", odd.NewRegularPrice.String())
}

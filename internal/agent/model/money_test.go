package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyCents(t *testing.T) {
	assert.Equal(t, Money(904), Cents(9.04))
	assert.Equal(t, Money(2801), Cents(28.01))
	assert.Equal(t, Money(2000), Cents(19.99)+Cents(0.01))
	assert.Equal(t, "9.04", Cents(9.04).String())
	assert.Equal(t, "-0.50", Money(-50).String())
	assert.Equal(t, "0.00", Money(0).String())
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(PriceChangeItem{VariationID: 1, OldPrice: Cents(9.04), NewPrice: Cents(109.04)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"variationId":1,"displayName":"","oldPrice":9.04,"newPrice":109.04}`, string(b))

	var item PriceChangeItem
	require.NoError(t, json.Unmarshal([]byte(`{"oldPrice":"28.01","newPrice":128.01}`), &item))
	assert.Equal(t, Cents(100), item.NewPrice-item.OldPrice)
}

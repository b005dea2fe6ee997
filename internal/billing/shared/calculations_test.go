package shared

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(qty, price string, taxable bool) Item {
	return Item{
		Qty:       decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		Taxable:   taxable,
		ItemType:  ItemTypeFixed,
		Unit:      "unit",
	}
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name        string
		items       []Item
		vat         string
		deposit     string
		wantSub     string
		wantVat     string
		wantTotal   string
		wantDeposit string
		wantBalance string
	}{
		{
			name:        "empty document",
			items:       nil,
			vat:         "15",
			deposit:     "40",
			wantSub:     "0",
			wantVat:     "0",
			wantTotal:   "0",
			wantDeposit: "0",
			wantBalance: "0",
		},
		{
			name:        "sample quote",
			items:       []Item{item("1", "1500", true), item("1", "15000", true)},
			vat:         "15",
			deposit:     "40",
			wantSub:     "16500",
			wantVat:     "2475",
			wantTotal:   "18975",
			wantDeposit: "7590",
			wantBalance: "11385",
		},
		{
			name:        "non taxable line excluded from vat base",
			items:       []Item{item("2", "100", true), item("1", "300", false)},
			vat:         "15",
			deposit:     "0",
			wantSub:     "500",
			wantVat:     "30",
			wantTotal:   "530",
			wantDeposit: "0",
			wantBalance: "530",
		},
		{
			name:        "fractional quantity",
			items:       []Item{item("1.5", "200", true)},
			vat:         "15",
			deposit:     "100",
			wantSub:     "300",
			wantVat:     "45",
			wantTotal:   "345",
			wantDeposit: "345",
			wantBalance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.items, decimal.RequireFromString(tt.vat), decimal.RequireFromString(tt.deposit))

			assert.True(t, got.SubtotalExclVat.Equal(decimal.RequireFromString(tt.wantSub)), "subtotal = %s", got.SubtotalExclVat)
			assert.True(t, got.VatAmount.Equal(decimal.RequireFromString(tt.wantVat)), "vat = %s", got.VatAmount)
			assert.True(t, got.TotalInclVat.Equal(decimal.RequireFromString(tt.wantTotal)), "total = %s", got.TotalInclVat)
			assert.True(t, got.DepositAmount.Equal(decimal.RequireFromString(tt.wantDeposit)), "deposit = %s", got.DepositAmount)
			assert.True(t, got.BalanceRemaining.Equal(decimal.RequireFromString(tt.wantBalance)), "balance = %s", got.BalanceRemaining)
		})
	}
}

func TestCalculateTotalsIdentities(t *testing.T) {
	items := []Item{
		item("3", "6521.74", true),
		item("0.25", "1304.35", false),
		item("7", "869.56", true),
	}
	vat := decimal.NewFromInt(15)

	for deposit := int64(0); deposit <= 100; deposit += 5 {
		got := CalculateTotals(items, vat, decimal.NewFromInt(deposit))

		assert.True(t, got.TotalInclVat.Equal(got.SubtotalExclVat.Add(got.VatAmount)))
		assert.True(t, got.VatAmount.Equal(got.TaxableBase.Mul(vat).Div(decimal.NewFromInt(100))))
		assert.True(t, got.DepositAmount.Add(got.BalanceRemaining).Equal(got.TotalInclVat), "deposit %d", deposit)
	}
}

func TestCalculateTotalsIdempotent(t *testing.T) {
	items := []Item{item("1", "0.1", true), item("3", "0.2", true)}
	first := CalculateTotals(items, decimal.NewFromInt(15), decimal.NewFromInt(33))
	second := CalculateTotals(items, decimal.NewFromInt(15), decimal.NewFromInt(33))
	assert.Equal(t, first, second)
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("12.50").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, ParseAmount("  3 ").Equal(decimal.NewFromInt(3)))
	assert.True(t, ParseAmount("").IsZero())
	assert.True(t, ParseAmount("abc").IsZero())
	assert.True(t, ParseAmount("1.2.3").IsZero())
}

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		Number  Amount  `json:"number"`
		Text    Amount  `json:"text"`
		Garbage Amount  `json:"garbage"`
		Bool    Amount  `json:"bool"`
		Object  Amount  `json:"object"`
		Null    *Amount `json:"null"`
		Missing *Amount `json:"missing"`
	}
	raw := `{"number": 2.5, "text": " 1500 ", "garbage": "abc", "bool": true, "object": {"x": 1}, "null": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &body))

	assert.True(t, body.Number.Decimal().Equal(decimal.RequireFromString("2.5")))
	assert.True(t, body.Text.Decimal().Equal(decimal.NewFromInt(1500)))
	assert.True(t, body.Garbage.Decimal().IsZero())
	assert.True(t, body.Bool.Decimal().IsZero())
	assert.True(t, body.Object.Decimal().IsZero())
	assert.Nil(t, body.Null)
	assert.Nil(t, body.Missing)
}

func TestCloneItemsIsIndependent(t *testing.T) {
	items := []Item{item("1", "10", true)}
	clone := CloneItems(items)
	clone[0].Description = "changed"
	assert.Empty(t, items[0].Description)
	assert.Nil(t, CloneItems(nil))
}

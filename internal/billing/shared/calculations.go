// Package shared holds the line item model and the money math shared by quotes and invoices.
package shared

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of a document.
type Totals struct {
	SubtotalExclVat  decimal.Decimal `json:"subtotal_excl_vat"`
	TaxableBase      decimal.Decimal `json:"taxable_base"`
	VatAmount        decimal.Decimal `json:"vat_amount"`
	TotalInclVat     decimal.Decimal `json:"total_incl_vat"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
}

// CalculateTotals derives document totals from its items, the VAT rate and the
// deposit percentage. Non-taxable lines count towards the subtotal but not the
// VAT base. Nothing is rounded.
func CalculateTotals(items []Item, vatPercentage, depositPercentage decimal.Decimal) Totals {
	subtotal := decimal.Zero
	taxable := decimal.Zero
	for _, item := range items {
		amount := item.Amount()
		subtotal = subtotal.Add(amount)
		if item.Taxable {
			taxable = taxable.Add(amount)
		}
	}

	vat := taxable.Mul(vatPercentage).Div(hundred)
	total := subtotal.Add(vat)
	deposit := total.Mul(depositPercentage).Div(hundred)

	return Totals{
		SubtotalExclVat:  subtotal,
		TaxableBase:      taxable,
		VatAmount:        vat,
		TotalInclVat:     total,
		DepositAmount:    deposit,
		BalanceRemaining: total.Sub(deposit),
	}
}

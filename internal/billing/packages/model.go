// Package packages holds the bundle catalog and expands bundles into document lines.
package packages

import (
	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/shared"
)

// Package is a named bundle of item templates. The bundle prices are shown to
// the user only; expansion copies the items.
type Package struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PriceInclVat decimal.Decimal `json:"price_incl_vat"`
	PriceExclVat decimal.Decimal `json:"price_excl_vat"`
	Items        []shared.Item   `json:"items"`
}

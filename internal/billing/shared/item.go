package shared

import "github.com/shopspring/decimal"

// ItemType says how a line is billed.
type ItemType string

const (
	ItemTypeFixed     ItemType = "fixed"
	ItemTypeRecurring ItemType = "recurring"
	ItemTypeHourly    ItemType = "hourly"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFixed, ItemTypeRecurring, ItemTypeHourly:
		return true
	}
	return false
}

// Item is a billable line owned by exactly one document.
type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Taxable     bool            `json:"taxable"`
	ItemType    ItemType        `json:"item_type"`
}

// Amount is qty * unit price, unrounded.
func (i Item) Amount() decimal.Decimal {
	return i.Qty.Mul(i.UnitPrice)
}

// NewItem returns the blank line the editor appends: one taxable fixed unit at zero.
func NewItem(id string) Item {
	return Item{
		ID:        id,
		Unit:      "unit",
		Qty:       decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		Taxable:   true,
		ItemType:  ItemTypeFixed,
	}
}

// CloneItems copies items into a fresh slice.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

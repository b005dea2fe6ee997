package quotes

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// Mutation is a single edit to a quote.
type Mutation func(*Quote) error

// Apply runs the mutations on a copy of q and recalculates its totals once all
// of them succeed. On error q is returned untouched.
func Apply(q Quote, vatPercentage decimal.Decimal, mutations ...Mutation) (Quote, error) {
	next := q.Clone()
	for _, m := range mutations {
		if err := m(&next); err != nil {
			return q, err
		}
	}
	next.Recalculate(vatPercentage)
	return next, nil
}

// SetClient points the quote at a client id. The id is not checked here.
func SetClient(clientID string) Mutation {
	return func(q *Quote) error {
		q.ClientID = clientID
		return nil
	}
}

// SetDateIssued changes the issue date.
func SetDateIssued(t time.Time) Mutation {
	return func(q *Quote) error {
		q.DateIssued = t
		return nil
	}
}

// SetValidUntil changes the expiry date.
func SetValidUntil(t time.Time) Mutation {
	return func(q *Quote) error {
		q.ValidUntil = t
		return nil
	}
}

// SetNotes replaces the free-text notes.
func SetNotes(notes string) Mutation {
	return func(q *Quote) error {
		q.Notes = notes
		return nil
	}
}

// SetTerms replaces the terms paragraph copied from settings.
func SetTerms(terms string) Mutation {
	return func(q *Quote) error {
		q.TermsText = terms
		return nil
	}
}

var hundred = decimal.NewFromInt(100)

// ValidateDeposit reports ErrInvalidDeposit unless p is within [0, 100].
func ValidateDeposit(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidDeposit, p)
	}
	return nil
}

// SetDepositPercentage changes the deposit share of the total.
func SetDepositPercentage(p decimal.Decimal) Mutation {
	return func(q *Quote) error {
		if err := ValidateDeposit(p); err != nil {
			return err
		}
		q.DepositPercentage = p
		return nil
	}
}

// AddItem appends a line. A blank item type defaults to fixed.
func AddItem(item shared.Item) Mutation {
	return func(q *Quote) error {
		if item.ItemType == "" {
			item.ItemType = shared.ItemTypeFixed
		}
		if !item.ItemType.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidItemType, item.ItemType)
		}
		q.Items = append(q.Items, item)
		return nil
	}
}

// ItemPatch lists the line fields to change. Numeric fields accept JSON
// numbers or strings and fall back to zero when they do not parse.
type ItemPatch struct {
	Description *string          `json:"description,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	Qty         *shared.Amount   `json:"qty,omitempty"`
	UnitPrice   *shared.Amount   `json:"unit_price,omitempty"`
	Taxable     *bool            `json:"taxable,omitempty"`
	ItemType    *shared.ItemType `json:"item_type,omitempty"`
}

// UpdateItem applies patch to the line with itemID.
func UpdateItem(itemID string, patch ItemPatch) Mutation {
	return func(q *Quote) error {
		for i := range q.Items {
			if q.Items[i].ID != itemID {
				continue
			}
			it := &q.Items[i]
			if patch.ItemType != nil {
				if !patch.ItemType.Valid() {
					return fmt.Errorf("%w: %q", ErrInvalidItemType, *patch.ItemType)
				}
				it.ItemType = *patch.ItemType
			}
			if patch.Description != nil {
				it.Description = *patch.Description
			}
			if patch.Unit != nil {
				it.Unit = *patch.Unit
			}
			if patch.Qty != nil {
				it.Qty = patch.Qty.Decimal()
			}
			if patch.UnitPrice != nil {
				it.UnitPrice = patch.UnitPrice.Decimal()
			}
			if patch.Taxable != nil {
				it.Taxable = *patch.Taxable
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
}

// RemoveItem drops the line with itemID.
func RemoveItem(itemID string) Mutation {
	return func(q *Quote) error {
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				q.Items = append(q.Items[:i:i], q.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
}

// AddPackage appends copies of the package lines.
func AddPackage(pkg packages.Package, newID func() string) Mutation {
	return func(q *Quote) error {
		q.Items = packages.Expand(pkg, q.Items, newID)
		return nil
	}
}

package invoices

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStatus = errors.New("invalid invoice status")

// Save replaces the invoice with the same id and stamps UpdatedAt. Invoices
// only enter a collection through conversion or seeding, so an unknown id
// leaves the collection unchanged and reports false.
func Save(inv Invoice, collection []Invoice, now time.Time) ([]Invoice, bool) {
	out := make([]Invoice, len(collection))
	copy(out, collection)
	for i := range out {
		if out[i].ID == inv.ID {
			inv.UpdatedAt = now
			out[i] = inv.Clone()
			return out, true
		}
	}
	return out, false
}

// Insert appends a freshly converted invoice.
func Insert(inv Invoice, collection []Invoice) []Invoice {
	out := make([]Invoice, len(collection), len(collection)+1)
	copy(out, collection)
	return append(out, inv.Clone())
}

// Find returns a copy of the invoice with id from the collection.
func Find(collection []Invoice, id string) (Invoice, bool) {
	for _, inv := range collection {
		if inv.ID == id {
			return inv.Clone(), true
		}
	}
	return Invoice{}, false
}

// Mutation is a single edit to an invoice. Items and totals have none.
type Mutation func(*Invoice) error

// Apply runs the mutations on a copy of inv. On error inv is returned as is.
func Apply(inv Invoice, mutations ...Mutation) (Invoice, error) {
	next := inv.Clone()
	for _, m := range mutations {
		if err := m(&next); err != nil {
			return inv, err
		}
	}
	return next, nil
}

// SetStatus assigns any known status; invoice statuses follow no fixed order.
func SetStatus(s InvoiceStatus) Mutation {
	return func(inv *Invoice) error {
		if !s.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
		inv.Status = s
		return nil
	}
}

// SetDateIssued sets the issue date.
func SetDateIssued(t time.Time) Mutation {
	return func(inv *Invoice) error {
		inv.DateIssued = t
		return nil
	}
}

// SetDueDate sets the payment due date.
func SetDueDate(t time.Time) Mutation {
	return func(inv *Invoice) error {
		inv.DueDate = t
		return nil
	}
}

// SetNotes replaces the free text notes.
func SetNotes(notes string) Mutation {
	return func(inv *Invoice) error {
		inv.Notes = notes
		return nil
	}
}

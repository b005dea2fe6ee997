// Package invoices implements invoice creation from accepted quotes and the
// invoice lifecycle. Invoice items and totals are a snapshot taken at
// conversion and are never recomputed.
package invoices

import (
	"time"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// InvoiceStatus is where an invoice stands in collection.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice is a bill issued to a client, normally converted from an accepted
// quote. Items and the embedded totals are frozen at conversion.
type Invoice struct {
	ID                  string                       `json:"id"`
	InvoiceNumber       string                       `json:"invoice_number"`
	CreatedByUserID     string                       `json:"created_by_user_id"`
	ClientID            string                       `json:"client_id"`
	DateIssued          time.Time                    `json:"date_issued"`
	DueDate             time.Time                    `json:"due_date"`
	Items               []shared.Item                `json:"items"`
	DepositRequired     bool                         `json:"deposit_required"`
	Status              InvoiceStatus                `json:"status"`
	PaymentInstructions settings.PaymentInstructions `json:"payment_instructions"`
	CreatedFromQuoteID  *string                      `json:"created_from_quote_id,omitempty"`
	Notes               string                       `json:"notes"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
	shared.Totals
}

// Clone returns a copy of inv that shares no storage with it.
func (inv Invoice) Clone() Invoice {
	inv.Items = shared.CloneItems(inv.Items)
	if inv.CreatedFromQuoteID != nil {
		id := *inv.CreatedFromQuoteID
		inv.CreatedFromQuoteID = &id
	}
	return inv
}

// FromQuote reports whether the invoice was converted from quoteID.
func (inv Invoice) FromQuote(quoteID string) bool {
	return inv.CreatedFromQuoteID != nil && *inv.CreatedFromQuoteID == quoteID
}

// IsOverdue reports whether the due date has passed on an invoice that is
// not fully paid.
func (inv Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceStatusPaid || inv.DueDate.IsZero() {
		return false
	}
	return inv.DueDate.Before(money.Today(now))
}

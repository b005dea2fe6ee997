package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/numbering"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// PaymentTermDays is the gap between issue and due date of a converted invoice.
const PaymentTermDays = 5

// NewID returns a random invoice identifier.
func NewID() string {
	return uuid.NewString()
}

// Convert issues an invoice for q using the current invoice counter and
// returns the settings with that counter advanced. Totals are copied from the
// quote as they are. The quote status is not checked here and q is left as is.
func Convert(q quotes.Quote, st settings.CompanySettings, now time.Time, newID func() string) (Invoice, settings.CompanySettings) {
	if newID == nil {
		newID = NewID
	}
	today := money.Today(now)
	quoteID := q.ID

	inv := Invoice{
		ID:                  newID(),
		InvoiceNumber:       numbering.GenerateNumber(st.NumberingFormatInvoice, st.NextInvoiceNumber, now),
		CreatedByUserID:     q.CreatedByUserID,
		ClientID:            q.ClientID,
		DateIssued:          today,
		DueDate:             money.AddDays(today, PaymentTermDays),
		Items:               shared.CloneItems(q.Items),
		DepositRequired:     q.DepositAmount.IsPositive(),
		Status:              InvoiceStatusSent,
		PaymentInstructions: st.PaymentInstructions,
		CreatedFromQuoteID:  &quoteID,
		CreatedAt:           now,
		UpdatedAt:           now,
		Totals:              q.Totals,
	}
	st.NextInvoiceNumber++
	return inv, st
}

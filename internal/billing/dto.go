package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/clients"
	"github.com/quotebook/quotebook/internal/billing/invoices"
	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// ============================================================================
// QUOTE REQUESTS
// ============================================================================

// CreateQuoteRequest starts a quote. Everything is optional; the draft
// defaults fill the rest.
type CreateQuoteRequest struct {
	CreatedByUserID   string         `json:"created_by_user_id" validate:"max=100"`
	ClientID          string         `json:"client_id" validate:"max=100"`
	Notes             string         `json:"notes"`
	DepositPercentage *shared.Amount `json:"deposit_percentage,omitempty"`
	Items             []ItemRequest  `json:"items" validate:"dive"`
}

// UpdateQuoteRequest changes quote header fields. Dates are YYYY-MM-DD.
type UpdateQuoteRequest struct {
	ClientID          *string        `json:"client_id,omitempty" validate:"omitempty,max=100"`
	DateIssued        *string        `json:"date_issued,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil        *string        `json:"valid_until,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes             *string        `json:"notes,omitempty"`
	TermsText         *string        `json:"terms_text,omitempty"`
	DepositPercentage *shared.Amount `json:"deposit_percentage,omitempty"`
}

func (r UpdateQuoteRequest) mutations() ([]quotes.Mutation, error) {
	var muts []quotes.Mutation
	if r.ClientID != nil {
		muts = append(muts, quotes.SetClient(*r.ClientID))
	}
	if r.DateIssued != nil {
		t, err := money.ParseISODate(*r.DateIssued)
		if err != nil {
			return nil, fmt.Errorf("%w: date_issued: %v", ErrValidation, err)
		}
		muts = append(muts, quotes.SetDateIssued(t))
	}
	if r.ValidUntil != nil {
		t, err := money.ParseISODate(*r.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: valid_until: %v", ErrValidation, err)
		}
		muts = append(muts, quotes.SetValidUntil(t))
	}
	if r.Notes != nil {
		muts = append(muts, quotes.SetNotes(*r.Notes))
	}
	if r.TermsText != nil {
		muts = append(muts, quotes.SetTerms(*r.TermsText))
	}
	if r.DepositPercentage != nil {
		muts = append(muts, quotes.SetDepositPercentage(r.DepositPercentage.Decimal()))
	}
	return muts, nil
}

// ItemRequest is a line as typed by the user. Quantity and price may be JSON
// numbers or strings and become zero when they do not parse.
type ItemRequest struct {
	Description string          `json:"description" validate:"max=500"`
	Unit        string          `json:"unit" validate:"max=50"`
	Qty         shared.Amount   `json:"qty"`
	UnitPrice   shared.Amount   `json:"unit_price"`
	Taxable     *bool           `json:"taxable,omitempty"`
	ItemType    shared.ItemType `json:"item_type" validate:"omitempty,oneof=fixed recurring hourly"`
}

// ToItem builds a line starting from the blank editor line.
func (r ItemRequest) ToItem(id string) shared.Item {
	item := shared.NewItem(id)
	item.Description = r.Description
	if r.Unit != "" {
		item.Unit = r.Unit
	}
	if r.Qty != "" {
		item.Qty = r.Qty.Decimal()
	}
	if r.UnitPrice != "" {
		item.UnitPrice = r.UnitPrice.Decimal()
	}
	if r.Taxable != nil {
		item.Taxable = *r.Taxable
	}
	if r.ItemType != "" {
		item.ItemType = r.ItemType
	}
	return item
}

// StatusRequest names the status a quote should move to.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ============================================================================
// INVOICE REQUESTS
// ============================================================================

// UpdateInvoiceRequest changes the editable invoice fields. Items and totals
// are fixed once an invoice exists.
type UpdateInvoiceRequest struct {
	Status     *invoices.InvoiceStatus `json:"status,omitempty"`
	DateIssued *string                 `json:"date_issued,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate    *string                 `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes      *string                 `json:"notes,omitempty"`
}

func (r UpdateInvoiceRequest) mutations() ([]invoices.Mutation, error) {
	var muts []invoices.Mutation
	if r.Status != nil {
		muts = append(muts, invoices.SetStatus(*r.Status))
	}
	if r.DateIssued != nil {
		t, err := money.ParseISODate(*r.DateIssued)
		if err != nil {
			return nil, fmt.Errorf("%w: date_issued: %v", ErrValidation, err)
		}
		muts = append(muts, invoices.SetDateIssued(t))
	}
	if r.DueDate != nil {
		t, err := money.ParseISODate(*r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date: %v", ErrValidation, err)
		}
		muts = append(muts, invoices.SetDueDate(t))
	}
	if r.Notes != nil {
		muts = append(muts, invoices.SetNotes(*r.Notes))
	}
	return muts, nil
}

// ============================================================================
// CALCULATOR
// ============================================================================

// TotalsRequest feeds the stateless calculator. Missing rates fall back to
// the company VAT rate and the default quote deposit.
type TotalsRequest struct {
	Items             []ItemRequest  `json:"items" validate:"dive"`
	VatPercentage     *shared.Amount `json:"vat_percentage,omitempty"`
	DepositPercentage *shared.Amount `json:"deposit_percentage,omitempty"`
}

// TotalsResponse carries raw totals plus their display strings.
type TotalsResponse struct {
	shared.Totals
	Currency  string            `json:"currency"`
	Formatted map[string]string `json:"formatted"`
}

func formatTotals(t shared.Totals, currency string) map[string]string {
	f := func(d decimal.Decimal) string { return money.FormatCurrency(d, currency, money.DefaultLocale) }
	return map[string]string{
		"subtotal_excl_vat": f(t.SubtotalExclVat),
		"vat_amount":        f(t.VatAmount),
		"total_incl_vat":    f(t.TotalInclVat),
		"deposit_amount":    f(t.DepositAmount),
		"balance_remaining": f(t.BalanceRemaining),
	}
}

// ============================================================================
// READ MODELS
// ============================================================================

// Dashboard holds the headline counts shown on the landing page.
type Dashboard struct {
	TotalQuotes         int `json:"total_quotes"`
	OpenQuotes          int `json:"open_quotes"`
	OutstandingDeposits int `json:"outstanding_deposits"`
	OverdueInvoices     int `json:"overdue_invoices"`
	PastDueInvoices     int `json:"past_due_invoices"`
}

// DocumentKind tells quotes and invoices apart in export requests.
type DocumentKind string

const (
	DocumentQuote   DocumentKind = "quote"
	DocumentInvoice DocumentKind = "invoice"
)

// ParseDocumentKind accepts the singular or plural kind used in URLs.
func ParseDocumentKind(raw string) (DocumentKind, error) {
	switch raw {
	case "quote", "quotes":
		return DocumentQuote, nil
	case "invoice", "invoices":
		return DocumentInvoice, nil
	}
	return "", fmt.Errorf("%w: unknown document kind %q", ErrValidation, raw)
}

// Document is everything needed to lay out a quote or invoice for export.
// Exactly one of Quote and Invoice is set.
type Document struct {
	Kind     DocumentKind             `json:"kind"`
	Number   string                   `json:"number"`
	Quote    *quotes.Quote            `json:"quote,omitempty"`
	Invoice  *invoices.Invoice        `json:"invoice,omitempty"`
	Client   clients.Client           `json:"client"`
	Settings settings.CompanySettings `json:"settings"`
}

// Package quotes implements the quote lifecycle: drafting, field and line edits
// with synchronous total recalculation, the status machine and saving into the
// quote collection.
package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/shared"
)

// QuoteStatus is the position of a quote in its lifecycle.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusDeclined QuoteStatus = "declined"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote is a priced offer to a client. The embedded totals are derived from
// Items, the company VAT rate and DepositPercentage and are only ever written
// by Recalculate.
type Quote struct {
	ID                string          `json:"id"`
	QuoteNumber       string          `json:"quote_number"`
	CreatedByUserID   string          `json:"created_by_user_id"`
	ClientID          string          `json:"client_id"`
	DateIssued        time.Time       `json:"date_issued"`
	ValidUntil        time.Time       `json:"valid_until"`
	Items             []shared.Item   `json:"items"`
	DepositPercentage decimal.Decimal `json:"deposit_percentage"`
	Status            QuoteStatus     `json:"status"`
	Notes             string          `json:"notes"`
	TermsText         string          `json:"terms_text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	shared.Totals
}

// Recalculate rewrites the totals from the current items.
func (q *Quote) Recalculate(vatPercentage decimal.Decimal) {
	q.Totals = shared.CalculateTotals(q.Items, vatPercentage, q.DepositPercentage)
}

// Clone returns a copy of q that shares no item storage with it.
func (q Quote) Clone() Quote {
	q.Items = shared.CloneItems(q.Items)
	return q
}

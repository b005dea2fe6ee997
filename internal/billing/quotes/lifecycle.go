package quotes

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/numbering"
	"github.com/quotebook/quotebook/internal/billing/settings"
)

const (
	// ValidityDays is how long a new quote stays open.
	ValidityDays = 30
	// DefaultDepositPercentage is the deposit a new quote asks for.
	DefaultDepositPercentage = 40
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDeposit    = errors.New("deposit percentage must be between 0 and 100")
	ErrItemNotFound      = errors.New("quote item not found")
	ErrInvalidItemType   = errors.New("invalid item type")
)

// NewID returns a random quote identifier.
func NewID() string {
	return uuid.NewString()
}

// NewDraft prepares an unsaved quote numbered from the current counter. The
// counter itself only moves when the quote is first saved.
func NewDraft(st settings.CompanySettings, createdBy string, now time.Time, newID func() string) Quote {
	if newID == nil {
		newID = NewID
	}
	today := money.Today(now)
	return Quote{
		ID:                newID(),
		QuoteNumber:       numbering.GenerateNumber(st.NumberingFormatQuote, st.NextQuoteNumber, now),
		CreatedByUserID:   createdBy,
		DateIssued:        today,
		ValidUntil:        money.AddDays(today, ValidityDays),
		Items:             nil,
		DepositPercentage: decimal.NewFromInt(DefaultDepositPercentage),
		Status:            QuoteStatusDraft,
		TermsText:         st.TermsText,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Save stores q in the collection. A quote whose id is already present
// replaces the stored one and gets a new UpdatedAt; anything else is appended
// and advances the quote counter by one. Neither input is modified.
func Save(q Quote, collection []Quote, st settings.CompanySettings, now time.Time) ([]Quote, settings.CompanySettings) {
	out := make([]Quote, len(collection), len(collection)+1)
	copy(out, collection)
	for i := range out {
		if out[i].ID == q.ID {
			q.UpdatedAt = now
			out[i] = q.Clone()
			return out, st
		}
	}
	out = append(out, q.Clone())
	st.NextQuoteNumber++
	return out, st
}

// Find returns the quote with id from the collection.
func Find(collection []Quote, id string) (Quote, bool) {
	for _, q := range collection {
		if q.ID == id {
			return q.Clone(), true
		}
	}
	return Quote{}, false
}

var transitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft: {QuoteStatusSent},
	QuoteStatusSent:  {QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired},
}

// CanTransition reports whether a quote may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to QuoteStatus) bool {
	if from == to {
		return to.Valid()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves q to status to.
func Transition(q Quote, to QuoteStatus) (Quote, error) {
	if !to.Valid() {
		return q, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(q.Status, to) {
		return q, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, to)
	}
	q.Status = to
	return q, nil
}

package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// Sample returns the accepted quote a demo installation is seeded with.
func Sample(st settings.CompanySettings) Quote {
	q := Quote{
		ID:              "quote1",
		QuoteNumber:     "QT-2024-0001",
		CreatedByUserID: "user2",
		ClientID:        "client1",
		DateIssued:      time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC),
		Items: []shared.Item{
			{ID: "item1", Description: "Development server", Unit: "unit", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1500), Taxable: true, ItemType: shared.ItemTypeFixed},
			{ID: "item2", Description: "Project Management Module", Unit: "unit", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(15000), Taxable: true, ItemType: shared.ItemTypeFixed},
		},
		DepositPercentage: decimal.NewFromInt(DefaultDepositPercentage),
		Status:            QuoteStatusAccepted,
		Notes:             "Initial quote for project kickoff.",
		TermsText:         st.TermsText,
		CreatedAt:         time.Date(2024, time.November, 20, 10, 0, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2024, time.November, 22, 14, 30, 0, 0, time.UTC),
	}
	q.Recalculate(st.VatPercentage)
	return q
}

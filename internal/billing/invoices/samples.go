package invoices

import (
	"time"

	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
)

// Sample returns the invoice converted from quotes.Sample that a demo
// installation is seeded with.
func Sample(st settings.CompanySettings) Invoice {
	q := quotes.Sample(st)
	issued := time.Date(2024, time.November, 22, 14, 30, 0, 0, time.UTC)
	st.NextInvoiceNumber = 1
	inv, _ := Convert(q, st, issued, func() string { return "inv1" })
	return inv
}

// Package settings holds the company-wide configuration threaded through every
// billing operation.
package settings

import "github.com/shopspring/decimal"

// PaymentInstructions are the banking details printed on invoices.
type PaymentInstructions struct {
	Bank          string `json:"bank" validate:"max=100"`
	AccountName   string `json:"account_name" validate:"max=200"`
	AccountNumber string `json:"account_number" validate:"max=50"`
	BranchCode    string `json:"branch_code" validate:"max=20"`
	Swift         string `json:"swift" validate:"max=20"`
}

// CompanySettings is the process-wide configuration. The two counters are
// owned by document creation and are never edited directly.
type CompanySettings struct {
	CompanyName            string              `json:"company_name"`
	Address                string              `json:"address"`
	Email                  string              `json:"email"`
	Phone                  string              `json:"phone"`
	LogoURL                string              `json:"logo_url"`
	Currency               string              `json:"currency"`
	VatPercentage          decimal.Decimal     `json:"vat_percentage"`
	NumberingFormatQuote   string              `json:"numbering_format_quote"`
	NumberingFormatInvoice string              `json:"numbering_format_invoice"`
	NextQuoteNumber        int                 `json:"next_quote_number"`
	NextInvoiceNumber      int                 `json:"next_invoice_number"`
	TermsText              string              `json:"terms_text"`
	PaymentInstructions    PaymentInstructions `json:"payment_instructions"`
}

// DefaultTerms is the stock terms paragraph copied onto new quotes.
const DefaultTerms = "Work performed will be strictly in accordance with the approved Spec Sheet provided by the client. " +
	"A 40% deposit is due within 3 business days of invoice receipt and work will only commence upon confirmation of deposit. " +
	"Final balance is due within 3 business days of project completion notification. " +
	"Change requests outside the approved Spec Sheet will be quoted and billed separately. " +
	"Three months of post-delivery support is included; thereafter support will incur charges based on query complexity."

// Defaults returns the settings a fresh installation starts with.
func Defaults() CompanySettings {
	return CompanySettings{
		CompanyName:            "Innovation Imperial",
		Address:                "123 Tech Avenue, Silicon Valley, 94043",
		Email:                  "contact@innovationimperial.com",
		Phone:                  "+1 (555) 123-4567",
		LogoURL:                "https://picsum.photos/seed/logo/200/50",
		Currency:               "ZAR",
		VatPercentage:          decimal.NewFromInt(15),
		NumberingFormatQuote:   "QT-{YYYY}-{seq:04d}",
		NumberingFormatInvoice: "INV-{YYYY}-{seq:04d}",
		NextQuoteNumber:        2,
		NextInvoiceNumber:      2,
		TermsText:              DefaultTerms,
		PaymentInstructions: PaymentInstructions{
			Bank:          "FNB",
			AccountName:   "Sage Capital Labs",
			AccountNumber: "63053388782",
			BranchCode:    "250655",
			Swift:         "FIRNZAJJXXX",
		},
	}
}

package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quotebook/quotebook/internal/billing"
	"github.com/quotebook/quotebook/internal/billing/clients"
	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

//go:embed layout.html
var layoutSource string

var layoutTemplate = template.Must(template.New("document").Parse(layoutSource))

// LayoutData is the view model of the printed document.
type LayoutData struct {
	Title               string
	Label               string
	Number              string
	DateIssued          string
	SecondDateLabel     string
	SecondDate          string
	Status              string
	Company             settings.CompanySettings
	Client              clients.Client
	Lines               []LayoutLine
	Subtotal            string
	VatLabel            string
	Vat                 string
	Total               string
	DepositDue          string
	PaymentInstructions *settings.PaymentInstructions
}

// LayoutLine is one item row, already formatted for display.
type LayoutLine struct {
	Description string
	Unit        string
	Qty         string
	UnitPrice   string
	Amount      string
}

// BuildLayout maps a document onto the fixed layout. Rounding happens here
// and nowhere earlier.
func BuildLayout(doc billing.Document) (LayoutData, error) {
	st := doc.Settings
	format := func(d decimal.Decimal) string {
		return money.FormatCurrency(d, st.Currency, money.DefaultLocale)
	}

	data := LayoutData{
		Number:   doc.Number,
		Company:  st,
		Client:   doc.Client,
		VatLabel: fmt.Sprintf("VAT @ %s%%", st.VatPercentage.String()),
	}

	var (
		items   []shared.Item
		totals  shared.Totals
		deposit decimal.Decimal
		status  string
	)
	switch {
	case doc.Kind == billing.DocumentQuote && doc.Quote != nil:
		q := doc.Quote
		data.Label = "Quote"
		data.DateIssued = money.ISODate(q.DateIssued)
		data.SecondDateLabel = "Valid Until"
		data.SecondDate = money.ISODate(q.ValidUntil)
		items, totals, status = q.Items, q.Totals, string(q.Status)
		deposit = q.DepositAmount
	case doc.Kind == billing.DocumentInvoice && doc.Invoice != nil:
		inv := doc.Invoice
		data.Label = "Invoice"
		data.DateIssued = money.ISODate(inv.DateIssued)
		data.SecondDateLabel = "Due Date"
		data.SecondDate = money.ISODate(inv.DueDate)
		items, totals, status = inv.Items, inv.Totals, string(inv.Status)
		if inv.DepositRequired {
			deposit = inv.DepositAmount
		}
		pi := inv.PaymentInstructions
		data.PaymentInstructions = &pi
	default:
		return LayoutData{}, fmt.Errorf("%w: document %q has no %s body", billing.ErrValidation, doc.Number, doc.Kind)
	}

	data.Title = strings.ToUpper(data.Label)
	data.Status = strings.ReplaceAll(status, "_", " ")
	for _, it := range items {
		data.Lines = append(data.Lines, LayoutLine{
			Description: it.Description,
			Unit:        it.Unit,
			Qty:         it.Qty.String(),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Amount:      it.Amount().StringFixed(2),
		})
	}
	data.Subtotal = format(totals.SubtotalExclVat)
	data.Vat = format(totals.VatAmount)
	data.Total = format(totals.TotalInclVat)
	if deposit.IsPositive() {
		data.DepositDue = format(deposit)
	}
	return data, nil
}

// RenderLayout produces the standalone HTML page for doc.
func RenderLayout(doc billing.Document) (string, error) {
	data, err := BuildLayout(doc)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := layoutTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render layout: %w", err)
	}
	return buf.String(), nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/quotes"
	"github.com/quotebook/quotebook/internal/billing/settings"
	"github.com/quotebook/quotebook/internal/billing/shared"
)

// totalsOutput is the --json shape of the totals command.
type totalsOutput struct {
	shared.Totals
	Currency string `json:"currency"`
}

func totalsCommand(args []string, stdout, stderr io.Writer) int {
	defaults := settings.Defaults()
	var (
		rawItems []string
		vat      string
		deposit  string
		currency string
		asJSON   bool
	)
	fs := pflag.NewFlagSet("totals", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringArrayVar(&rawItems, "item", nil, `line item "description,qty,unit_price[,taxable]" (repeatable)`)
	fs.StringVar(&vat, "vat", defaults.VatPercentage.String(), "VAT percentage")
	fs.StringVar(&deposit, "deposit", strconv.Itoa(quotes.DefaultDepositPercentage), "deposit percentage")
	fs.StringVar(&currency, "currency", defaults.Currency, "ISO currency code used for display")
	fs.BoolVar(&asJSON, "json", false, "print totals as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	items := make([]shared.Item, 0, len(rawItems))
	for i, raw := range rawItems {
		item, err := parseItem(raw, fmt.Sprintf("cli-%d", i+1))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "quotectl totals: %v\n", err)
			return 1
		}
		items = append(items, item)
	}

	totals := shared.CalculateTotals(items, shared.ParseAmount(vat), shared.ParseAmount(deposit))
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(totalsOutput{Totals: totals, Currency: currency}); err != nil {
			_, _ = fmt.Fprintf(stderr, "quotectl totals: encode json: %v\n", err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	rows := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Subtotal (excl. VAT)", totals.SubtotalExclVat},
		{"Taxable base", totals.TaxableBase},
		{"VAT", totals.VatAmount},
		{"Total (incl. VAT)", totals.TotalInclVat},
		{"Deposit", totals.DepositAmount},
		{"Balance remaining", totals.BalanceRemaining},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row.label, money.FormatCurrency(row.amount, currency, money.DefaultLocale))
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

// parseItem reads "description,qty,unit_price[,taxable]". Numbers that do not
// parse count as zero, the same as in the quote editor.
func parseItem(raw, id string) (shared.Item, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return shared.Item{}, fmt.Errorf("item %q: want description,qty,unit_price[,taxable]", raw)
	}
	item := shared.NewItem(id)
	item.Description = strings.TrimSpace(parts[0])
	item.Qty = shared.ParseAmount(strings.TrimSpace(parts[1]))
	item.UnitPrice = shared.ParseAmount(strings.TrimSpace(parts[2]))
	if len(parts) == 4 {
		taxable, err := strconv.ParseBool(strings.TrimSpace(parts[3]))
		if err != nil {
			return shared.Item{}, fmt.Errorf("item %q: taxable must be true or false", raw)
		}
		item.Taxable = taxable
	}
	return item, nil
}

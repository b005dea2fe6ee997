package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/packages"
	"github.com/quotebook/quotebook/internal/billing/settings"
)

func packagesCommand(args []string, stdout, stderr io.Writer) int {
	var currency string
	fs := pflag.NewFlagSet("packages", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&currency, "currency", settings.Defaults().Currency, "ISO currency code used for display")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	catalog, err := packages.Default()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "quotectl packages: %v\n", err)
		return 1
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tITEMS\tPRICE (EXCL. VAT)")
	for _, pkg := range catalog.List() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", pkg.ID, pkg.Name, len(pkg.Items),
			money.FormatCurrency(pkg.PriceExclVat, currency, money.DefaultLocale))
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

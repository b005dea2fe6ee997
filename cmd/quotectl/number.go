package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/quotebook/quotebook/internal/billing/money"
	"github.com/quotebook/quotebook/internal/billing/numbering"
	"github.com/quotebook/quotebook/internal/billing/settings"
)

func numberCommand(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	var (
		format string
		seq    int
		date   string
	)
	fs := pflag.NewFlagSet("number", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&format, "format", settings.Defaults().NumberingFormatQuote, "numbering template")
	fs.IntVar(&seq, "seq", 1, "sequence number")
	fs.StringVar(&date, "date", "", "issue date YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	at := now()
	if date != "" {
		parsed, err := money.ParseISODate(date)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "quotectl number: invalid date %q (expected YYYY-MM-DD)\n", date)
			return 1
		}
		at = parsed
	}
	_, _ = fmt.Fprintln(stdout, numbering.GenerateNumber(format, seq, at))
	return 0
}

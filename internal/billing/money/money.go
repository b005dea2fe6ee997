// Package money holds the formatting and date helpers used by billing documents.
package money

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ISODateLayout is the calendar date layout used on documents.
const ISODateLayout = "2006-01-02"

// DefaultLocale is the locale billing documents are rendered in.
var DefaultLocale = language.Make("en-ZA")

// FormatCurrency renders amount in the given ISO currency using the locale's
// symbol and digit grouping. Rounding to the currency's minor unit happens here
// and nowhere else.
func FormatCurrency(amount decimal.Decimal, code string, locale language.Tag) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + amount.StringFixed(2)
	}
	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(locale)
	return p.Sprintf("%v %s", currency.Symbol(unit), formatDecimal(p, amount, int32(scale)))
}

// formatDecimal groups the integer digits through the printer and appends the
// fraction from StringFixed, so no digit passes through a float.
func formatDecimal(p *message.Printer, amount decimal.Decimal, scale int32) string {
	fixed := amount.Abs().StringFixed(scale)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return amount.StringFixed(scale)
	}
	out := p.Sprint(number.Decimal(n))
	if frac != "" {
		out += decimalSeparator(p) + frac
	}
	if amount.Round(scale).IsNegative() {
		out = "-" + out
	}
	return out
}

func decimalSeparator(p *message.Printer) string {
	s := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
}

// Today truncates t to midnight in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays offsets a calendar date by n days, normalising month and year rollover.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// ISODate extracts the YYYY-MM-DD part of t.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISODateLayout)
}

// ParseISODate parses a YYYY-MM-DD date in UTC.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, s, time.UTC)
}

package shared

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a user-entered number. Anything that does not parse is
// treated as zero so that a half-typed field never breaks a live edit.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Amount is a numeric field as it arrives from a client: a JSON number, a JSON
// string or anything else. Decoding never fails; Decimal applies ParseAmount.
type Amount string

// UnmarshalJSON keeps the raw text of the value. Strings are unquoted.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	*a = Amount(raw)
	return nil
}

// Decimal returns the parsed value, zero when it does not parse.
func (a Amount) Decimal() decimal.Decimal {
	return ParseAmount(string(a))
}

// Package numbering issues human readable document numbers from format templates.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// TokenYear is replaced by the four digit calendar year.
	TokenYear = "{YYYY}"
	// TokenSequence is replaced by the sequence padded to at least four digits.
	TokenSequence = "{seq:04d}"
)

// GenerateNumber renders format for the given sequence. Each token is replaced
// at most once; anything else in the template is copied verbatim.
func GenerateNumber(format string, sequence int, now time.Time) string {
	out := strings.Replace(format, TokenYear, fmt.Sprintf("%04d", now.Year()), 1)
	return strings.Replace(out, TokenSequence, pad(sequence), 1)
}

func pad(sequence int) string {
	if sequence < 0 {
		return "-" + pad(-sequence)
	}
	s := strconv.Itoa(sequence)
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}

// Generator binds GenerateNumber to a clock.
type Generator struct {
	now func() time.Time
}

// NewGenerator constructs a Generator. A nil clock falls back to time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next renders format for sequence using the generator's current year.
func (g *Generator) Next(format string, sequence int) string {
	return GenerateNumber(format, sequence, g.now())
}

package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNumber(t *testing.T) {
	year2024 := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		format   string
		sequence int
		want     string
	}{
		{name: "year and sequence", format: "QT-{YYYY}-{seq:04d}", sequence: 7, want: "QT-2024-0007"},
		{name: "sequence only", format: "INV-{seq:04d}", sequence: 42, want: "INV-0042"},
		{name: "wide sequence is not truncated", format: "INV-{seq:04d}", sequence: 123456, want: "INV-123456"},
		{name: "no tokens", format: "STATIC", sequence: 3, want: "STATIC"},
		{name: "unknown token left verbatim", format: "{MM}/{seq:04d}", sequence: 1, want: "{MM}/0001"},
		{name: "only first occurrence replaced", format: "{YYYY}{YYYY}-{seq:04d}-{seq:04d}", sequence: 9, want: "2024{YYYY}-0009-{seq:04d}"},
		{name: "zero", format: "{seq:04d}", sequence: 0, want: "0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateNumber(tt.format, tt.sequence, year2024))
		})
	}
}

func TestGeneratorUsesClock(t *testing.T) {
	gen := NewGenerator(func() time.Time { return time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC) })
	assert.Equal(t, "QT-2031-0012", gen.Next("QT-{YYYY}-{seq:04d}", 12))
}

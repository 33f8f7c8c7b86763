package expiry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCivilSeasonalOffset(t *testing.T) {
	p := NewParser(chicago(t))

	tests := []struct {
		instant string
		want    string
	}{
		// CDT in late September.
		{"2025-09-28T07:11:00Z", "Sep 28, 2025, 02:11 AM UTC-05:00"},
		// CST in January.
		{"2025-01-15T06:00:00Z", "Jan 15, 2025, 12:00 AM UTC-06:00"},
		// A UTC evening lands on the previous civil day.
		{"2025-07-01T03:30:00Z", "Jun 30, 2025, 10:30 PM UTC-05:00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, p.FormatCivil(utc(t, tc.instant)), "instant=%s", tc.instant)
	}
}

func TestFormatCivilRoundTripsNaiveInput(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	// A naive civil string must come back out with the same wall clock
	// and the correct seasonal offset.
	got, status := p.ParseExpiry("2025-07-04T12:30:00", ref, "")
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "Jul 04, 2025, 12:30 PM UTC-05:00", p.FormatCivil(got))

	got, status = p.ParseExpiry("2025-01-15T12:30:00", ref, "")
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "Jan 15, 2025, 12:30 PM UTC-06:00", p.FormatCivil(got))
}

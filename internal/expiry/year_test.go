package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseYearWindow(t *testing.T) {
	p := NewParser(chicago(t))
	anchor := utc(t, "2025-01-01T00:00:00Z")

	tests := []struct {
		name  string
		month time.Month
		day   int
		want  string
	}{
		// Jul 1 is 181 whole days after the anchor: past the window,
		// so the previous year's occurrence wins.
		{"just past window resolves back a year", time.July, 1, "2024-07-01T05:00:00Z"},
		// Jun 29 is 179 whole days after: inside the window.
		{"inside window keeps anchor year", time.June, 29, "2025-06-29T05:00:00Z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := p.chooseYear(tc.month, tc.day, anchor, nil)
			require.True(t, ok)
			assert.Equal(t, utc(t, tc.want), got)
		})
	}
}

func TestChooseYearRetriesForward(t *testing.T) {
	p := NewParser(chicago(t))
	anchor := utc(t, "2024-11-01T00:00:00Z")

	// Mar 1 2024 is ~245 days before the anchor, so the next year's
	// occurrence is the plausible one.
	got, ok := p.chooseYear(time.March, 1, anchor, nil)
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-03-01T06:00:00Z"), got)
}

func TestChooseYearPrefersArchivedAnchor(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")
	archived := utc(t, "2024-11-01T00:00:00Z")

	// Against the archived anchor, Sep 3 2024 is 59 days back: kept.
	got, ok := p.chooseYear(time.September, 3, ref, &archived)
	require.True(t, ok)
	assert.Equal(t, utc(t, "2024-09-03T05:00:00Z"), got)

	// Against ref alone the same month/day lands in 2025.
	got, ok = p.chooseYear(time.September, 3, ref, nil)
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-09-03T05:00:00Z"), got)
}

func TestChooseYearInvalidRetryKeepsCandidate(t *testing.T) {
	p := NewParser(chicago(t))
	// Anchor in leap year 2024; Feb 29 2024 is more than 180 days
	// before Nov 1 2024 but Feb 29 2025 does not exist, so the anchor
	// year candidate stays.
	anchor := utc(t, "2024-12-01T00:00:00Z")

	got, ok := p.chooseYear(time.February, 29, anchor, nil)
	require.True(t, ok)
	assert.Equal(t, utc(t, "2024-02-29T06:00:00Z"), got)
}

func TestChooseYearInvalidDate(t *testing.T) {
	p := NewParser(chicago(t))
	anchor := utc(t, "2025-01-01T00:00:00Z")

	// Feb 29 2025 does not exist at all.
	_, ok := p.chooseYear(time.February, 29, anchor, nil)
	assert.False(t, ok)
}

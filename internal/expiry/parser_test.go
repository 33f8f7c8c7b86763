package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func utc(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

func TestParseExpiryIndeterminate(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	for _, raw := range []string{"", "   ", "Unknown", "unknown", "UNKNOWN", " unknown "} {
		_, status := p.ParseExpiry(raw, ref, "")
		assert.Equal(t, StatusIndeterminate, status, "raw=%q", raw)
	}
}

func TestParseExpiryISOOffsetExact(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	tests := []struct {
		raw  string
		want string
	}{
		{"2025-10-01T00:00:00Z", "2025-10-01T00:00:00Z"},
		{"2025-10-01T00:00:00z", "2025-10-01T00:00:00Z"},
		{"2025-10-01T00:00:00+00:00", "2025-10-01T00:00:00Z"},
		// Explicit offsets are honored exactly, never reinterpreted.
		{"2025-10-01T00:00:00+02:00", "2025-09-30T22:00:00Z"},
		{"2025-10-01T12:00:00-05:00", "2025-10-01T17:00:00Z"},
	}
	for _, tc := range tests {
		got, status := p.ParseExpiry(tc.raw, ref, "")
		require.Equal(t, StatusOK, status, "raw=%q", tc.raw)
		assert.Equal(t, utc(t, tc.want), got, "raw=%q", tc.raw)
	}
}

func TestParseExpiryNaiveIsCivilLocal(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	tests := []struct {
		raw  string
		want string
	}{
		// Summer: CDT, UTC-5.
		{"2025-07-04T12:30:00", "2025-07-04T17:30:00Z"},
		{"2025-07-04 12:30:00", "2025-07-04T17:30:00Z"},
		// Winter: CST, UTC-6.
		{"2025-01-15T12:30:00", "2025-01-15T18:30:00Z"},
		// Date-only ISO is midnight civil, not midnight UTC.
		{"2025-01-15", "2025-01-15T06:00:00Z"},
		{"2025-07-04", "2025-07-04T05:00:00Z"},
	}
	for _, tc := range tests {
		got, status := p.ParseExpiry(tc.raw, ref, "")
		require.Equal(t, StatusOK, status, "raw=%q", tc.raw)
		assert.Equal(t, utc(t, tc.want), got, "raw=%q", tc.raw)
	}
}

func TestParseExpiryNumericSlash(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	tests := []struct {
		raw  string
		want string
	}{
		// Month-first when the first numeral fits a month.
		{"09/15/2024", "2024-09-15T05:00:00Z"},
		// Day-first when it cannot be a month.
		{"28/09/2025", "2025-09-28T05:00:00Z"},
		// Two-digit years are promoted by +2000.
		{"09/15/24", "2024-09-15T05:00:00Z"},
		{"1/2/2025", "2025-01-02T06:00:00Z"},
	}
	for _, tc := range tests {
		got, status := p.ParseExpiry(tc.raw, ref, "")
		require.Equal(t, StatusOK, status, "raw=%q", tc.raw)
		assert.Equal(t, utc(t, tc.want), got, "raw=%q", tc.raw)
	}

	// Impossible calendar dates do not get normalized into real ones.
	_, status := p.ParseExpiry("02/30/2025", ref, "")
	assert.Equal(t, StatusUnparsable, status)
}

func TestParseExpiryNamedMonthFormats(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	tests := []struct {
		raw  string
		want string
	}{
		{"Sep 28, 2025", "2025-09-28T05:00:00Z"},
		{"September 28, 2025", "2025-09-28T05:00:00Z"},
		{"Sep 28 2025", "2025-09-28T05:00:00Z"},
		{"28 Sep 2025", "2025-09-28T05:00:00Z"},
		{"28 September 2025", "2025-09-28T05:00:00Z"},
		{"Sep 28, 2025 2:11 AM", "2025-09-28T07:11:00Z"},
		{"September 28, 2025 10:30 PM", "2025-09-29T03:30:00Z"},
		// Ordinal suffixes and "Sept" are normalized away.
		{"Sept 28th, 2025", "2025-09-28T05:00:00Z"},
		{"January 1st, 2025", "2025-01-01T06:00:00Z"},
		// A trailing UTC token is dropped; the remainder is still
		// read as civil-local (known upstream mislabeling).
		{"Sep 28, 2025 UTC", "2025-09-28T05:00:00Z"},
		{"Sep   28,    2025", "2025-09-28T05:00:00Z"},
	}
	for _, tc := range tests {
		got, status := p.ParseExpiry(tc.raw, ref, "")
		require.Equal(t, StatusOK, status, "raw=%q", tc.raw)
		assert.Equal(t, utc(t, tc.want), got, "raw=%q", tc.raw)
	}
}

func TestParseExpiryMonthDayUsesArchivedAnchor(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	// Candidate 2024-09-03 sits 59 days before the archived anchor, so
	// the anchor year is kept.
	got, status := p.ParseExpiry("Sept 3rd", ref, "2024-11-01T00:00:00Z")
	require.Equal(t, StatusOK, status)
	assert.Equal(t, utc(t, "2024-09-03T05:00:00Z"), got)

	// Without an archived hint the reference instant anchors the year.
	got, status = p.ParseExpiry("Sep 3", ref, "")
	require.Equal(t, StatusOK, status)
	assert.Equal(t, utc(t, "2025-09-03T05:00:00Z"), got)
}

func TestParseExpiryUnparsable(t *testing.T) {
	p := NewParser(chicago(t))
	ref := utc(t, "2025-10-01T00:00:00Z")

	for _, raw := range []string{"soon", "next Tuesday", "2025/09/28", "99/99/9999", "expires whenever"} {
		_, status := p.ParseExpiry(raw, ref, "")
		assert.Equal(t, StatusUnparsable, status, "raw=%q", raw)
	}
}

func TestNormalizeDateString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sept 3rd", "Sep 3"},
		{"September 1st, 2025", "September 1, 2025"},
		{"Oct 2nd 2025", "Oct 2 2025"},
		{"Sep 28, 2025 UTC", "Sep 28, 2025"},
		{"  Sep   28,  2025 ", "Sep 28, 2025"},
		{"22nd Sept 2025", "22 Sep 2025"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizeDateString(tc.in), "in=%q", tc.in)
	}
}

func TestParseISO(t *testing.T) {
	p := NewParser(chicago(t))

	got, ok := p.ParseISO("2025-10-01T00:00:00Z")
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-10-01T00:00:00Z"), got)

	// Naive ISO is civil-local.
	got, ok = p.ParseISO("2025-10-01 00:00:00")
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-10-01T05:00:00Z"), got)

	got, ok = p.ParseISO("2025-10-01")
	require.True(t, ok)
	assert.Equal(t, utc(t, "2025-10-01T05:00:00Z"), got)

	for _, bad := range []string{"", "Unknown", "not a date"} {
		_, ok := p.ParseISO(bad)
		assert.False(t, ok, "raw=%q", bad)
	}
}

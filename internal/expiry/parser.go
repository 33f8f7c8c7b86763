package expiry

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Status classifies the outcome of parsing an expires value.
type Status int

const (
	// StatusOK means the value resolved to an unambiguous UTC instant.
	StatusOK Status = iota
	// StatusIndeterminate means the value is intentionally absent:
	// missing, empty, or the literal "Unknown".
	StatusIndeterminate
	// StatusUnparsable means a value was present but matched no known
	// date grammar.
	StatusUnparsable
)

// Parser converts free-form expiry strings into UTC instants. Naive input
// (no explicit UTC offset) is interpreted in the fixed civil timezone loc
// and then converted, so every instant leaving the parser is fully
// resolved. The zero heuristics live here and nowhere else:
//
//   - numeric slash dates are day-first when the first numeral exceeds 12,
//     month-first otherwise;
//   - a trailing "UTC" token is stripped but the remainder is still read
//     as civil-local time (the upstream data mislabels local stamps);
//   - month/day-only dates get a year from chooseYear.
type Parser struct {
	loc *time.Location
}

// NewParser returns a Parser bound to the given civil timezone.
func NewParser(loc *time.Location) *Parser {
	return &Parser{loc: loc}
}

// Location returns the parser's civil timezone.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// ISO layouts carrying an explicit offset; the trailing-Z form is folded
// into these by time.Parse.
var isoOffsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

// ISO layouts without an offset, interpreted as civil-local.
var isoNaiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Named-month layouts tried in order; first match wins. The year-less
// entries at the end hand off to the year disambiguator.
var namedLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"Jan 2",
	"January 2",
}

var (
	dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	ordinalRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	septRe     = regexp.MustCompile(`(?i)\bSept\b`)
	utcTokenRe = regexp.MustCompile(`(?i)\s*UTC\b`)
	spacesRe   = regexp.MustCompile(`\s+`)
	slashRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
)

// ParseISO parses an ISO-8601-like string. An explicit offset (or trailing
// Z) is honored exactly; a naive string is interpreted civil-local. The
// boolean is false for empty/"unknown"/unparsable input.
func (p *Parser) ParseISO(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" || strings.EqualFold(s, "unknown") {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "z") {
		s = strings.TrimSuffix(s, "z") + "Z"
	}
	for _, layout := range isoOffsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range isoNaiveLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseExpiry parses an expires value into a UTC instant. ref is the
// per-run reference instant and archivedHint the record's archived stamp,
// both consulted only to pick a year for month/day-only input.
func (p *Parser) ParseExpiry(raw string, ref time.Time, archivedHint string) (time.Time, Status) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "unknown") {
		return time.Time{}, StatusIndeterminate
	}

	// Date-only ISO is midnight civil, not midnight UTC.
	if dateOnlyRe.MatchString(s) {
		t, ok := p.parseDateOnly(s)
		if !ok {
			return time.Time{}, StatusUnparsable
		}
		return t, StatusOK
	}

	if t, ok := p.ParseISO(s); ok {
		return t, StatusOK
	}

	norm := normalizeDateString(s)

	if t, ok := p.parseNumericSlash(norm); ok {
		return t, StatusOK
	}

	for _, layout := range namedLayouts {
		t, err := time.ParseInLocation(layout, norm, p.loc)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			// Year-less match: resolve against archived/ref.
			var archived *time.Time
			if a, ok := p.ParseISO(archivedHint); ok {
				archived = &a
			}
			resolved, ok := p.chooseYear(t.Month(), t.Day(), ref, archived)
			if !ok {
				return time.Time{}, StatusUnparsable
			}
			return resolved, StatusOK
		}
		return t.UTC(), StatusOK
	}

	return time.Time{}, StatusUnparsable
}

func (p *Parser) parseDateOnly(s string) (time.Time, bool) {
	parts := strings.SplitN(s, "-", 3)
	y, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	d, _ := strconv.Atoi(parts[2])
	t, ok := civilDate(y, time.Month(m), d, p.loc)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// normalizeDateString applies the free-text cleanup rules: ordinal
// suffixes to bare numerals, "Sept" to "Sep", trailing "UTC" token
// dropped, whitespace collapsed.
func normalizeDateString(s string) string {
	s = strings.TrimSpace(s)
	s = ordinalRe.ReplaceAllString(s, "$1")
	s = septRe.ReplaceAllString(s, "Sep")
	s = utcTokenRe.ReplaceAllString(s, "")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// parseNumericSlash handles 09/28/2025 and 28/09/2025 style dates as
// midnight civil. First numeral above 12 means day-first; two-digit years
// are promoted by adding 2000.
func (p *Parser) parseNumericSlash(s string) (time.Time, bool) {
	m := slashRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	if y < 100 {
		y += 2000
	}
	var t time.Time
	var ok bool
	if a > 12 {
		t, ok = civilDate(y, time.Month(b), a, p.loc)
	} else {
		t, ok = civilDate(y, time.Month(a), b, p.loc)
	}
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// civilDate builds midnight at year/month/day in loc, rejecting calendar
// dates that time.Date would otherwise normalize (e.g. Feb 30).
func civilDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

package expiry

import (
	"math"
	"time"
)

// yearWindowDays bounds how far a month/day-only expiry may sit from its
// anchor before the adjacent year is preferred. Expiry strings without a
// year are typically close to when the code was archived, so the nearest
// plausible annual occurrence wins.
const yearWindowDays = 180

// chooseYear resolves a month/day-only date to midnight civil in a
// concrete year. The anchor is the archived instant when present, the
// reference instant otherwise. A candidate more than 180 whole days after
// the anchor retries one year back; more than 180 before, one year
// forward. A retry that lands on an invalid date (Feb 29) keeps the
// anchor-year candidate.
func (p *Parser) chooseYear(month time.Month, day int, ref time.Time, archived *time.Time) (time.Time, bool) {
	anchor := ref.UTC()
	if archived != nil {
		anchor = archived.UTC()
	}

	candidate, ok := civilDate(anchor.Year(), month, day, p.loc)
	if !ok {
		return time.Time{}, false
	}

	diffDays := int(math.Floor(candidate.Sub(anchor).Hours() / 24))
	switch {
	case diffDays > yearWindowDays:
		if retry, ok := civilDate(anchor.Year()-1, month, day, p.loc); ok {
			candidate = retry
		}
	case diffDays < -yearWindowDays:
		if retry, ok := civilDate(anchor.Year()+1, month, day, p.loc); ok {
			candidate = retry
		}
	}
	return candidate.UTC(), true
}

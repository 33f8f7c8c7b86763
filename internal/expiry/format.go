package expiry

import (
	"fmt"
	"time"
)

// FormatCivil renders a UTC instant as civil-local wall-clock time with
// the seasonal UTC offset spelled out numerically, e.g.
// "Sep 28, 2025, 02:11 AM UTC-05:00" (CDT) or "... UTC-06:00" (CST).
// Numeric offsets stay unambiguous across years, unlike abbreviations.
func (p *Parser) FormatCivil(t time.Time) string {
	local := t.In(p.loc)
	_, off := local.Zone()
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	return local.Format("Jan 02, 2006, 03:04 PM ") +
		fmt.Sprintf("UTC%s%02d:%02d", sign, off/3600, (off%3600)/60)
}

package engine

import (
	"strings"
	"time"

	"github.com/kkkkikiki/shiftsweep/internal/expiry"
	"github.com/kkkkikiki/shiftsweep/internal/model"
)

// Sweep classifies every record against ref and sets expired=true on
// records whose expiry predates ref and are not already flagged. The
// expires value itself is never altered here.
//
// Counters always report the would-be effect; changed reports the actual
// effect, so under dry-run changed is false even when SetExpired is not.
func (e *Engine) Sweep(entries []model.ShiftCode, ref time.Time, dryRun bool) (bool, Stats, []RecordReport) {
	var stats Stats
	details := make([]RecordReport, 0, len(entries))

	for i := range entries {
		stats.Scanned++
		rec := &entries[i]

		c := e.parser.Classify(*rec, ref)
		switch c.Verdict {
		case expiry.VerdictIndeterminate:
			stats.SkippedUnknown++
		case expiry.VerdictUnparsable:
			stats.Unparsable++
		case expiry.VerdictWillExpire:
			if !rec.Expired {
				stats.SetExpired++
				if !dryRun {
					rec.Expired = true
				}
			}
		}

		details = append(details, RecordReport{
			Code:           strings.TrimSpace(rec.Code),
			ExpiresDisplay: c.Display,
			Verdict:        c.Verdict,
			WillSet:        willSetToken(c.Verdict),
		})
	}

	changed := stats.SetExpired > 0 && !dryRun
	return changed, stats, details
}

package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kkkkikiki/shiftsweep/internal/expiry"
	"github.com/kkkkikiki/shiftsweep/internal/model"
)

// UpdateTargets rewrites the expires stamp of the records named in codes.
// Matching is trimmed and case-insensitive. Two modes:
//
//   - forcedExpires true (the caller supplied the stamp): overwrite
//     expires with ref, leave expired untouched;
//   - forcedExpires false: overwrite expires with ref and set
//     expired=true, counted as newly set only when it transitions.
//
// Codes with no matching record come back in unmatched, sorted. Dry-run
// mirrors Sweep: counters report intent, nothing is written, changed is
// false.
func (e *Engine) UpdateTargets(entries []model.ShiftCode, codes []string, ref time.Time, forcedExpires, dryRun bool) (bool, Stats, []RecordReport, []string, error) {
	targets := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			targets[c] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return false, Stats{}, nil, nil, fmt.Errorf("no code(s) provided")
	}

	var stats Stats
	var details []RecordReport
	unmatched := make(map[string]struct{}, len(targets))
	for c := range targets {
		unmatched[c] = struct{}{}
	}

	stampISO := ref.UTC().Format(time.RFC3339)
	stampPretty := e.parser.FormatCivil(ref)

	for i := range entries {
		rec := &entries[i]
		code := strings.ToUpper(strings.TrimSpace(rec.Code))
		if _, ok := targets[code]; !ok {
			continue
		}
		delete(unmatched, code)
		stats.Scanned++

		// Classify the stored value first so the report can show a
		// before/after pair.
		c := e.parser.Classify(*rec, ref)
		switch c.Verdict {
		case expiry.VerdictIndeterminate:
			stats.SkippedUnknown++
		case expiry.VerdictUnparsable:
			stats.Unparsable++
		}

		willSet := WillSetNA
		stats.SetExpires++
		if forcedExpires {
			stats.UpdatedExpiresOnly++
			if !dryRun {
				rec.Expires = stampISO
			}
		} else {
			willSet = WillSetYes
			if !rec.Expired {
				stats.SetExpired++
			}
			if !dryRun {
				rec.Expires = stampISO
				rec.Expired = true
			}
		}

		details = append(details, RecordReport{
			Code:              code,
			ExpiresDisplay:    c.Display,
			NewExpiresDisplay: stampPretty,
			Verdict:           c.Verdict,
			WillSet:           willSet,
		})
	}

	// Every matched record had its expires stamp rewritten, so any match
	// means the document changed.
	changed := stats.SetExpires > 0 && !dryRun

	missing := make([]string, 0, len(unmatched))
	for c := range unmatched {
		missing = append(missing, c)
	}
	sort.Strings(missing)

	return changed, stats, details, missing, nil
}

package expiry

import (
	"strings"
	"time"

	"github.com/kkkkikiki/shiftsweep/internal/model"
)

// Verdict is the classification of one record against the reference
// instant.
type Verdict int

const (
	// VerdictIndeterminate - expires is missing, empty, or "Unknown".
	VerdictIndeterminate Verdict = iota
	// VerdictUnparsable - expires is present but matches no grammar.
	VerdictUnparsable
	// VerdictWillExpire - expires resolves to an instant before ref.
	VerdictWillExpire
	// VerdictNotYet - expires resolves to ref or later.
	VerdictNotYet
)

func (v Verdict) String() string {
	switch v {
	case VerdictIndeterminate:
		return "INDETERMINATE"
	case VerdictUnparsable:
		return "UNPARSABLE"
	case VerdictWillExpire:
		return "WILL_EXPIRE"
	case VerdictNotYet:
		return "NOT_YET"
	}
	return "UNKNOWN"
}

// Classification is the classifier's per-record result. Instant is the
// zero time unless Verdict is WillExpire or NotYet. Display is the string
// a report shows for the stored expires value.
type Classification struct {
	Instant time.Time
	Verdict Verdict
	Display string
}

// Classify inspects a record's expires value relative to ref. It never
// mutates the record; both the bulk sweep and the targeted update use it
// so their reports agree.
func (p *Parser) Classify(rec model.ShiftCode, ref time.Time) Classification {
	raw := strings.TrimSpace(rec.Expires)
	if raw == "" {
		return Classification{Verdict: VerdictIndeterminate, Display: "Not Found"}
	}
	if strings.EqualFold(raw, "unknown") {
		return Classification{Verdict: VerdictIndeterminate, Display: "Unknown"}
	}

	t, status := p.ParseExpiry(raw, ref, rec.Archived)
	if status != StatusOK {
		return Classification{Verdict: VerdictUnparsable, Display: "Not Found"}
	}

	verdict := VerdictNotYet
	if t.Before(ref) {
		verdict = VerdictWillExpire
	}
	return Classification{Instant: t, Verdict: verdict, Display: p.FormatCivil(t)}
}

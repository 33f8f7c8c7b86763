// Package engine applies expiry classification to the code collection:
// a whole-collection bulk sweep and a targeted update over an explicit
// code set. Both operate purely in memory; loading and persisting the
// document is the caller's job, which keeps the dry-run and
// persist-after-full-pass contracts in one place.
package engine

import (
	"github.com/kkkkikiki/shiftsweep/internal/expiry"
)

// Will-set tokens used in per-record reports.
const (
	WillSetYes = "YES"
	WillSetNo  = "NO"
	WillSetNA  = "NA"
)

// Stats aggregates what a run did (or, under dry-run, would have done).
type Stats struct {
	// Scanned is the number of records visited; in targeted mode only
	// matched records count.
	Scanned int
	// SetExpired counts expired flags newly set (or that would be).
	SetExpired int
	// SetExpires counts expires fields overwritten (targeted mode).
	SetExpires int
	// SkippedUnknown counts records with missing/empty/"Unknown" expires.
	SkippedUnknown int
	// Unparsable counts records whose expires matched no grammar.
	Unparsable int
	// UpdatedExpiresOnly counts stamp-only overwrites actually written.
	UpdatedExpiresOnly int
}

// RecordReport is one record's before/after line for reporting.
// NewExpiresDisplay is set in targeted mode only.
type RecordReport struct {
	Code              string
	ExpiresDisplay    string
	NewExpiresDisplay string
	Verdict           expiry.Verdict
	WillSet           string
}

// Engine runs sweeps and targeted updates using one shared parser, so a
// single civil timezone and one reference instant govern a whole run.
type Engine struct {
	parser *expiry.Parser
}

// New returns an Engine backed by the given parser.
func New(parser *expiry.Parser) *Engine {
	return &Engine{parser: parser}
}

func willSetToken(v expiry.Verdict) string {
	switch v {
	case expiry.VerdictWillExpire:
		return WillSetYes
	case expiry.VerdictNotYet:
		return WillSetNo
	}
	return WillSetNA
}

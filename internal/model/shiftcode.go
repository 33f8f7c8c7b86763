package model

import (
	"encoding/json"
)

// ShiftCode represents one promotional code entry in the codes document.
// The expires value is free text as scraped (ISO, "Sep 28, 2025",
// "09/28/2025", "Unknown", or empty); archived is an ISO stamp written by
// the scraper when the code was first observed.
type ShiftCode struct {
	Code     string `json:"code"`
	Type     string `json:"type,omitempty"`
	Game     string `json:"game,omitempty"`
	Platform string `json:"platform,omitempty"`
	Reward   string `json:"reward,omitempty"`
	Archived string `json:"archived,omitempty"`
	Expires  string `json:"expires,omitempty"`
	Expired  bool   `json:"expired"`
	Link     string `json:"link,omitempty"`
}

// CodeFile is one element of the top-level document array. Meta is kept
// opaque so a rewrite never drops scraper-owned fields.
type CodeFile struct {
	Meta  json.RawMessage `json:"meta,omitempty"`
	Codes []ShiftCode     `json:"codes"`
}

// Document is the whole codes file: an array whose first element carries
// the codes list.
type Document []CodeFile

// Entries returns the mutable code list of the first element. The returned
// slice shares backing storage with the document, so index writes are
// visible to a later save.
func (d Document) Entries() []ShiftCode {
	if len(d) == 0 {
		return nil
	}
	return d[0].Codes
}

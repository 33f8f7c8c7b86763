package engine

import (
	"fmt"
	"strings"
)

// ParseTargetCodes turns positional CLI arguments into a clean code list.
// Multiple codes must be comma-separated; a token with an embedded space
// is ambiguous with the delimiter and rejected before any mutation.
func ParseTargetCodes(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	raw := strings.Join(args, " ")
	if len(args) > 1 && !strings.Contains(raw, ",") {
		return nil, fmt.Errorf("when passing multiple codes, separate them with commas, e.g. CODE1, CODE2, CODE3")
	}
	var cleaned []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, " ") {
			return nil, fmt.Errorf("invalid code token with spaces; separate multiple codes with commas, e.g. CODE1, CODE2")
		}
		cleaned = append(cleaned, part)
	}
	return cleaned, nil
}

package blob

import (
	"encoding/json"
	"strings"
)

// ValidJSON reports whether s is a single syntactically valid JSON value.
// Any value kind is accepted, not only objects; empty input and trailing
// garbage are rejected. No schema checks are applied.
func ValidJSON(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return json.Valid([]byte(s))
}

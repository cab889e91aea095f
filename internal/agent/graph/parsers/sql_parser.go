package parsers

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```sql|```")

// StripSQLFences removes markdown code fences from a model reply and trims it.
// An empty result means no usable SQL was produced.
func StripSQLFences(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

package parsers

import (
	"strings"
	"unicode/utf8"

	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxLabelLen   = 256
	maxErrSnippet = 200
)

var labelCleaner = strings.NewReplacer("'", "", `"`, "", "`", "")

// NormalizeIntentLabel cleans a raw classifier reply into a bare label:
// quotes and backticks removed, a trailing period dropped, lowercased.
func NormalizeIntentLabel(raw string) string {
	s := strings.TrimSpace(raw)
	s = truncate(s, maxLabelLen)
	s = labelCleaner.Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseIntent normalizes raw and maps it onto the closed intent set.
// The normalized label is returned alongside for tracing.
func ParseIntent(raw string) (model.Intent, string) {
	label := NormalizeIntentLabel(raw)
	intent := model.ParseIntent(label)
	if intent == model.IntentUnrecognized {
		logx.Warn().
			Str("component", "intent_parser").
			Str("label", safeSnippet(label)).
			Msg("unrecognized intent label; routing to general")
	}
	return intent, label
}

func safeSnippet(s string) string {
	return truncate(strings.TrimSpace(s), maxErrSnippet)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

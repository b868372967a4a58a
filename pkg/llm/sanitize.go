package llm

import (
	"regexp"
	"strings"
)

// The generator is a black box that does not reliably honor formatting
// instructions; raw SQL, code fences, and fragments of the JSON envelope
// leak into prose messages. These patterns strip the known leakage shapes
// before a message reaches the user. Heuristic, best effort: novel leakage
// shapes pass through, and prose legitimately discussing SELECT syntax may
// be over-stripped.
var leakPatterns = []*regexp.Regexp{
	// Fenced code blocks, with or without a language tag.
	regexp.MustCompile("(?s)```[a-z]*\n?.*?```"),
	// Unterminated trailing fence.
	regexp.MustCompile("(?s)```[a-z]*\n?.*$"),
	// Inline SELECT ... FROM ... fragments up to end of line.
	regexp.MustCompile(`(?i)SELECT\s+.{0,500}?\s+FROM\s+\S+[^\n]*`),
	// Partial JSON envelope fragments: {"message": or "sql": leading into text.
	regexp.MustCompile(`(?i)[{,]?\s*"(message|sql)"\s*:\s*"?`),
	// Dangling braces left behind by envelope fragments.
	regexp.MustCompile(`^\s*[{}]+\s*|\s*[{}]+\s*$`),
}

var multiSpacePattern = regexp.MustCompile(`[ \t]{2,}`)

// SanitizeChatMessage removes leaked SQL, code fences, and JSON fragments
// from generator prose.
func SanitizeChatMessage(message string) string {
	cleaned := message
	for _, pattern := range leakPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

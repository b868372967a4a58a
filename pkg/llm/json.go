package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeFencePattern matches a leading markdown fence with an optional
// language tag.
var (
	openFencePattern  = regexp.MustCompile("(?i)^```[a-z]*\n?")
	closeFencePattern = regexp.MustCompile("\n?```$")
)

// StripCodeFences removes a wrapping markdown code fence from generator
// output. Generators wrap answers in fences despite instructions not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = openFencePattern.ReplaceAllString(s, "")
	s = closeFencePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractJSON extracts JSON content from a generator response that may
// contain markdown code blocks or surrounding prose.
func ExtractJSON(response string) (string, error) {
	cleaned := StripCodeFences(response)

	if jsonStr, ok := extractBalancedJSON(cleaned, '{', '}'); ok {
		if json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}

	trimmed := strings.TrimSpace(cleaned)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// extractBalancedJSON finds the first balanced JSON structure starting with
// openChar, counting bracket depth and skipping string contents.
func extractBalancedJSON(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into the
// target type.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return result, nil
}

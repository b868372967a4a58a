// Package sql provides the safety gate between LLM-generated SQL and
// execution. It is a surface-syntax guard, not a semantic verifier: keyword
// matches inside string literals or identifiers can produce false positives,
// accepted as a conservative trade-off.
package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
)

// deniedKeywords are rejected when they appear as standalone tokens anywhere
// in the cleaned statement. INTO carries a narrow exception, see Validate.
var deniedKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "INTO",
}

var (
	lineCommentPattern  = regexp.MustCompile(`(?m)--.*$`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	selectPrefixPattern = regexp.MustCompile(`(?i)^SELECT\b`)
	insertIntoPattern   = regexp.MustCompile(`(?i)\bINSERT\s+INTO\b`)
)

var keywordPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(deniedKeywords))
	for _, kw := range deniedKeywords {
		patterns[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return patterns
}()

// Validate cleans an LLM-produced SQL string and returns it if safe to
// execute, or an error carrying apperrors.ErrSQLSafety. The cleaned
// statement must be a single SELECT referencing at least one allowed table.
//
// Steps, in order: strip comments; strip a single trailing semicolon;
// require a SELECT prefix; scan for denylisted keywords as whole words;
// reject any remaining semicolon outside string literals (statement
// stacking); require an allowed table reference; run injection heuristics
// over string-literal contents.
func Validate(sqlQuery string, allowedTables []string) (string, error) {
	cleaned := strings.TrimSpace(sqlQuery)
	cleaned = lineCommentPattern.ReplaceAllString(cleaned, "")
	cleaned = blockCommentPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = stripTrailingSemicolon(cleaned)

	if !selectPrefixPattern.MatchString(cleaned) {
		return "", fmt.Errorf("%w: only SELECT queries are allowed", apperrors.ErrSQLSafety)
	}

	upper := strings.ToUpper(cleaned)
	for _, keyword := range deniedKeywords {
		if keyword == "INTO" {
			// A bare INTO can appear incidentally (string contents, alias).
			// INSERT INTO is always rejected, via the INSERT keyword and
			// explicitly here for the paired form.
			if insertIntoPattern.MatchString(upper) {
				return "", fmt.Errorf("%w: dangerous SQL keyword detected: INSERT INTO", apperrors.ErrSQLSafety)
			}
			continue
		}
		if keywordPatterns[keyword].MatchString(upper) {
			return "", fmt.Errorf("%w: dangerous SQL keyword detected: %s", apperrors.ErrSQLSafety, keyword)
		}
	}

	if hasSemicolonOutsideStrings(cleaned) {
		return "", fmt.Errorf("%w: multiple SQL statements are not allowed", apperrors.ErrSQLSafety)
	}

	if !referencesAllowedTable(cleaned, allowedTables) {
		return "", fmt.Errorf("%w: query must reference an allowed table", apperrors.ErrSQLSafety)
	}

	if result := CheckLiteralsForInjection(cleaned); result != nil {
		return "", fmt.Errorf("%w: injection pattern detected in string literal (fingerprint %s)",
			apperrors.ErrSQLSafety, result.Fingerprint)
	}

	return cleaned, nil
}

// referencesAllowedTable reports whether the statement mentions at least one
// of the caller-supplied table identifiers verbatim.
func referencesAllowedTable(sqlQuery string, allowedTables []string) bool {
	for _, table := range allowedTables {
		if table != "" && strings.Contains(sqlQuery, table) {
			return true
		}
	}
	return false
}

// stripTrailingSemicolon removes a single trailing semicolon and any
// surrounding whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// For a doubled quote this exits and immediately re-enters on the
			// next quote, which correctly keeps us in the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
)

// insertPattern matches INSERT INTO <table> (<cols>) VALUES ... blocks up to
// the terminating semicolon or end of input. This is a best-effort importer
// for conventional dumps, not a SQL parser: deeply nested parentheses inside
// values can defeat it.
var insertPattern = regexp.MustCompile(`(?is)INSERT\s+INTO\s+\S+\s*\(([^)]+)\)\s*VALUES\s*(.*?)(?:;|$)`)

// valueGroupPattern matches each (...) group within a VALUES clause.
var valueGroupPattern = regexp.MustCompile(`\(([^)]+)\)`)

// ParseSQLDump extracts rows from INSERT statements in a SQL dump. The
// column list is taken from the first matching INSERT; every value group of
// every INSERT contributes one row.
func ParseSQLDump(content []byte) (*ParsedTable, error) {
	matches := insertPattern.FindAllStringSubmatch(string(content), -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no INSERT statements found in SQL dump", apperrors.ErrParse)
	}

	columns := make([]string, 0)
	for _, col := range strings.Split(matches[0][1], ",") {
		name := strings.TrimSpace(col)
		name = strings.Trim(name, "\"`")
		columns = append(columns, name)
	}

	rows := make([]Row, 0)
	for _, match := range matches {
		for _, group := range valueGroupPattern.FindAllStringSubmatch(match[2], -1) {
			values := parseValueList(group[1])
			row := make(Row, len(columns))
			for i, col := range columns {
				if i < len(values) {
					row[col] = values[i]
				}
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows found in SQL dump", apperrors.ErrParse)
	}

	return &ParsedTable{Columns: columns, Rows: rows}, nil
}

// parseValueList splits one (...) group on top-level commas, respecting
// single- or double-quoted strings with backslash-escaped quote characters.
// Quoted tokens stay strings; unquoted tokens go through numericToken.
func parseValueList(valuesStr string) []Value {
	values := make([]Value, 0)
	var current strings.Builder
	inString := false
	var stringChar byte

	flushBare := func() {
		token := strings.TrimSpace(current.String())
		current.Reset()
		if token == "" {
			return
		}
		values = append(values, numericToken(token))
	}

	for i := 0; i < len(valuesStr); i++ {
		char := valuesStr[i]

		if inString {
			if char == stringChar && (i == 0 || valuesStr[i-1] != '\\') {
				inString = false
				values = append(values, String(current.String()))
				current.Reset()
				// Skip ahead past the separating comma, if any.
				rest := valuesStr[i+1:]
				next := strings.IndexFunc(rest, func(r rune) bool { return r != ' ' && r != '\t' })
				if next >= 0 && rest[next] == ',' {
					i += next + 1
				}
			} else {
				current.WriteByte(char)
			}
			continue
		}

		switch char {
		case '\'', '"':
			inString = true
			stringChar = char
			current.Reset()
		case ',':
			flushBare()
		default:
			current.WriteByte(char)
		}
	}

	flushBare()
	return values
}

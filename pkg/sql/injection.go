package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes an injection pattern found inside a string
// literal of a generated statement.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if a SQL injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Literal     string // The literal content that failed the check
}

// CheckLiteralsForInjection runs libinjection over the contents of every
// single-quoted string literal in the statement. Literal values are the one
// place the user's question flows verbatim into generated SQL, so they get
// the same heuristic screening the rest of the statement gets structurally.
//
// Returns nil when all literals are clean.
func CheckLiteralsForInjection(sqlQuery string) *InjectionCheckResult {
	for _, literal := range extractStringLiterals(sqlQuery) {
		// Short benign literals trip libinjection's fragment heuristics far
		// more often than they catch anything; only screen ones long enough
		// to smuggle a subquery or stacked statement.
		if len(literal) < 8 {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			return &InjectionCheckResult{
				IsSQLi:      true,
				Fingerprint: string(fingerprint),
				Literal:     literal,
			}
		}
	}
	return nil
}

// extractStringLiterals returns the contents of single-quoted literals,
// honoring SQL standard doubled-quote escapes.
func extractStringLiterals(sqlQuery string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sqlQuery); i++ {
		char := sqlQuery[i]

		if !inString {
			if char == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}

		if char == '\'' {
			// Doubled quote is an escaped quote inside the literal.
			if i+1 < len(sqlQuery) && sqlQuery[i+1] == '\'' {
				current.WriteByte('\'')
				i++
				continue
			}
			inString = false
			literals = append(literals, current.String())
			continue
		}

		current.WriteByte(char)
	}

	return literals
}

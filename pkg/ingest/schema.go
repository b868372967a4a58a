package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Jmatos87/queryflow/pkg/models"
)

const (
	// DefaultClassifyThreshold is the dominance fraction a candidate type
	// must reach over non-null values to win a column.
	DefaultClassifyThreshold = 0.8
	// DefaultSampleSize bounds the representative values kept per column.
	DefaultSampleSize = 5
)

// Timestamp shapes accepted for classification: ISO date, or date-time with
// 'T' or space separator. A regex match alone is not enough; the value must
// also survive a real date parse.
var (
	isoDateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T|\s)\d{2}:\d{2}`)
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Analyzer infers per-column semantic types from parsed rows.
type Analyzer struct {
	threshold  float64
	sampleSize int
}

// NewAnalyzer creates an analyzer. Zero config values fall back to defaults.
func NewAnalyzer(threshold float64, sampleSize int) *Analyzer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultClassifyThreshold
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Analyzer{threshold: threshold, sampleSize: sampleSize}
}

// Analyze produces a schema for every column of the table. It never fails:
// columns that fit no candidate type default to text. Nullability is set
// when any value is null, absent, or empty.
func (a *Analyzer) Analyze(table *ParsedTable) []models.ColumnSchema {
	schema := make([]models.ColumnSchema, 0, len(table.Columns))

	for _, name := range table.Columns {
		nonNull := make([]Value, 0, len(table.Rows))
		for _, row := range table.Rows {
			v, ok := row[name]
			if !ok || v.IsEmpty() {
				continue
			}
			nonNull = append(nonNull, v)
		}

		colType := a.inferType(nonNull)

		schema = append(schema, models.ColumnSchema{
			Name:     name,
			Type:     colType,
			Nullable: len(nonNull) < len(table.Rows),
			Sample:   a.sampleValues(nonNull, colType),
		})
	}

	return schema
}

// inferType counts, over non-null values, how many match each candidate
// type, and picks the first whose fraction reaches the threshold. Priority:
// boolean > timestamp > numeric > text. A numeric column is real when any
// matched value needed a decimal interpretation, else integer.
func (a *Analyzer) inferType(values []Value) models.ColumnType {
	if len(values) == 0 {
		return models.ColumnTypeText
	}

	var boolCount, timestampCount, intCount, realCount int

	for _, v := range values {
		str := strings.TrimSpace(v.Text)

		if isBooleanLiteral(str) {
			boolCount++
			continue
		}

		if isTimestamp(str) {
			timestampCount++
			continue
		}

		if num, ok := parseNumeric(str); ok {
			if num.isInt {
				intCount++
			} else {
				realCount++
			}
			continue
		}
	}

	total := float64(len(values))

	switch {
	case float64(boolCount)/total >= a.threshold:
		return models.ColumnTypeBoolean
	case float64(timestampCount)/total >= a.threshold:
		return models.ColumnTypeTimestamp
	case float64(intCount+realCount)/total >= a.threshold:
		if realCount > 0 {
			return models.ColumnTypeReal
		}
		return models.ColumnTypeInteger
	default:
		return models.ColumnTypeText
	}
}

// sampleValues keeps the first sampleSize non-null values, coerced to the
// column type when possible so prompt consumers see realistic values.
func (a *Analyzer) sampleValues(values []Value, colType models.ColumnType) []any {
	limit := a.sampleSize
	if len(values) < limit {
		limit = len(values)
	}

	sample := make([]any, 0, limit)
	for _, v := range values[:limit] {
		switch colType {
		case models.ColumnTypeInteger:
			if num, ok := parseNumeric(strings.TrimSpace(v.Text)); ok {
				sample = append(sample, int64(num.value))
				continue
			}
		case models.ColumnTypeReal:
			if num, ok := parseNumeric(strings.TrimSpace(v.Text)); ok {
				sample = append(sample, num.value)
				continue
			}
		}
		sample = append(sample, v.Display())
	}
	return sample
}

func isBooleanLiteral(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func isTimestamp(s string) bool {
	if !isoDateTimePattern.MatchString(s) && !isoDatePattern.MatchString(s) {
		return false
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// numericResult reports a successful numeric parse: the parsed value and
// whether the textual form was a pure integer.
type numericResult struct {
	value float64
	isInt bool
}

// numericNoise strips currency symbols, thousands separators, percent signs,
// parentheses, and interior whitespace before numeric parsing.
var numericNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", "%", "", "(", "", ")", "",
	" ", "", "\t", "",
)

// parseNumeric parses a string as a number after stripping formatting
// noise. Accounting-style parentheses or a leading minus mark the value
// negative.
func parseNumeric(s string) (numericResult, bool) {
	if s == "" {
		return numericResult{}, false
	}

	negative := strings.HasPrefix(s, "-") ||
		(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))

	cleaned := numericNoise.Replace(s)
	cleaned = strings.TrimPrefix(cleaned, "-")
	if cleaned == "" {
		return numericResult{}, false
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return numericResult{}, false
	}
	if negative {
		f = -f
	}

	return numericResult{
		value: f,
		isInt: !strings.Contains(cleaned, ".") && f == float64(int64(f)),
	}, true
}

// Package ingest implements the upload pipeline: parsing heterogeneous file
// formats into a uniform row/column model, inferring a column type schema
// from the raw values, and loading coerced rows into typed storage.
package ingest

import "strconv"

// ValueKind discriminates the raw cell variants a parser can produce.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a single raw cell captured before coercion. Parsers emit a closed
// set of variants (null, string, number, bool) so the loader's coercion is a
// total function over the cell space. Text holds the original textual form
// for every non-null kind; Num/Flag are populated for their kinds only.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
	Flag bool
}

// Null returns the null cell.
func Null() Value {
	return Value{Kind: KindNull}
}

// String wraps a raw string cell.
func String(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Number wraps a numeric cell, keeping the original textual form so integer
// versus real classification can still see whether a decimal point was used.
func Number(text string, n float64) Value {
	return Value{Kind: KindNumber, Text: text, Num: n}
}

// Bool wraps a boolean cell.
func Bool(b bool) Value {
	v := Value{Kind: KindBool, Flag: b, Text: "false"}
	if b {
		v.Text = "true"
	}
	return v
}

// IsNull reports whether the cell is null or absent.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// IsEmpty reports whether the cell is null or an empty string. Empty strings
// count as missing for nullability and coercion purposes.
func (v Value) IsEmpty() bool {
	return v.Kind == KindNull || (v.Kind == KindString && v.Text == "")
}

// Display returns the value for sample lists: native Go types where the
// parser knew better than "string", nil for null.
func (v Value) Display() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindNumber:
		if i, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return i
		}
		return v.Num
	case KindBool:
		return v.Flag
	default:
		return v.Text
	}
}

// Row maps column name to raw cell. Rows may be missing keys (sparse JSON);
// a missing key is treated as null.
type Row map[string]Value

// ParsedTable is the uncoerced tabular shape every parser produces: ordered,
// unique column names plus rows keyed by those names.
type ParsedTable struct {
	Columns []string
	Rows    []Row
}

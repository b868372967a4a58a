package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
)

// Parse dispatches raw file bytes to the parser for the given file type.
func Parse(fileType models.FileType, content []byte) (*ParsedTable, error) {
	switch fileType {
	case models.FileTypeCSV:
		return ParseCSV(content)
	case models.FileTypeJSON:
		return ParseJSON(content)
	case models.FileTypeSQL:
		return ParseSQLDump(content)
	case models.FileTypeXLSX:
		return ParseXLSX(content)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", apperrors.ErrParse, fileType)
	}
}

// ParseCSV parses header-delimited CSV content. Field and header whitespace
// is trimmed, blank lines are skipped, and rows with column-count drift are
// tolerated: short rows leave trailing columns absent, long rows drop the
// extra fields.
func ParseCSV(content []byte) (*ParsedTable, error) {
	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate column-count drift

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid CSV: %v", apperrors.ErrParse, err)
	}

	// Drop blank lines.
	filtered := records[:0]
	for _, rec := range records {
		blank := true
		for _, field := range rec {
			if strings.TrimSpace(field) != "" {
				blank = false
				break
			}
		}
		if !blank {
			filtered = append(filtered, rec)
		}
	}

	if len(filtered) < 2 {
		return nil, fmt.Errorf("%w: CSV file is empty or has no data rows", apperrors.ErrParse)
	}

	columns := make([]string, 0, len(filtered[0]))
	for _, name := range filtered[0] {
		columns = append(columns, strings.TrimSpace(name))
	}

	rows := make([]Row, 0, len(filtered)-1)
	for _, rec := range filtered[1:] {
		row := make(Row, len(columns))
		for i, name := range columns {
			if i < len(rec) {
				row[name] = String(strings.TrimSpace(rec[i]))
			}
		}
		rows = append(rows, row)
	}

	return &ParsedTable{Columns: columns, Rows: rows}, nil
}

// ParseJSON parses a top-level array of objects, a single object, or an
// object containing an array-valued property (first such property wins).
// The column set is the union of all keys seen across all rows, ordered by
// first appearance.
func ParseJSON(content []byte) (*ParsedTable, error) {
	decoder := json.NewDecoder(strings.NewReader(string(content)))
	decoder.UseNumber()

	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", apperrors.ErrParse, err)
	}

	var items []any
	switch root := parsed.(type) {
	case []any:
		items = root
	case map[string]any:
		items = []any{root}
		// Prefer the first array-valued property over wrapping the object
		// itself. Plain maps do not preserve key order, so re-scan the raw
		// document for the first array property.
		if field, ok := firstArrayField(content, root); ok {
			items = field
		}
	default:
		return nil, fmt.Errorf("%w: JSON must be an array or object", apperrors.ErrParse)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: JSON file contains no data", apperrors.ErrParse)
	}

	columns := make([]string, 0)
	seen := make(map[string]bool)
	rows := make([]Row, 0, len(items))

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: JSON rows must be objects", apperrors.ErrParse)
		}

		row := make(Row, len(obj))
		for key, raw := range obj {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			row[key] = jsonValue(raw)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: JSON file contains no data", apperrors.ErrParse)
	}

	// Key iteration order above is nondeterministic; rebuild column order
	// from the raw document so it reflects first appearance.
	if ordered := orderedKeys(content, columns); len(ordered) == len(columns) {
		columns = ordered
	}

	return &ParsedTable{Columns: columns, Rows: rows}, nil
}

// firstArrayField finds the first array-valued property of a root object,
// scanning the raw document to respect declaration order.
func firstArrayField(content []byte, root map[string]any) ([]any, bool) {
	type keyPos struct {
		key string
		pos int
	}
	var positions []keyPos
	doc := string(content)
	for key, val := range root {
		if _, isArr := val.([]any); !isArr {
			continue
		}
		if pos := strings.Index(doc, `"`+key+`"`); pos >= 0 {
			positions = append(positions, keyPos{key, pos})
		}
	}
	if len(positions) == 0 {
		return nil, false
	}
	best := positions[0]
	for _, kp := range positions[1:] {
		if kp.pos < best.pos {
			best = kp
		}
	}
	arr, _ := root[best.key].([]any)
	return arr, true
}

// orderedKeys sorts column names by their first appearance in the raw
// document. Names absent from the document (pathological escaping) keep
// their discovery order at the end.
func orderedKeys(content []byte, columns []string) []string {
	doc := string(content)
	type keyPos struct {
		key string
		pos int
	}
	positions := make([]keyPos, 0, len(columns))
	var unplaced []string
	for _, key := range columns {
		pos := strings.Index(doc, `"`+key+`"`)
		if pos < 0 {
			unplaced = append(unplaced, key)
			continue
		}
		positions = append(positions, keyPos{key, pos})
	}
	for i := 1; i < len(positions); i++ {
		for j := i; j > 0 && positions[j].pos < positions[j-1].pos; j-- {
			positions[j], positions[j-1] = positions[j-1], positions[j]
		}
	}
	ordered := make([]string, 0, len(columns))
	for _, kp := range positions {
		ordered = append(ordered, kp.key)
	}
	return append(ordered, unplaced...)
}

// jsonValue converts a decoded JSON value to a raw cell.
func jsonValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return String(v.String())
		}
		return Number(v.String(), f)
	default:
		// Nested objects/arrays degrade to their JSON text.
		encoded, err := json.Marshal(v)
		if err != nil {
			return String(fmt.Sprintf("%v", v))
		}
		return String(string(encoded))
	}
}

// numericToken converts an unquoted SQL dump token to a cell: NULL becomes
// null, numeric-looking tokens become numbers, anything else stays a string.
func numericToken(token string) Value {
	if strings.EqualFold(token, "NULL") {
		return Null()
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return Number(token, f)
	}
	return String(token)
}

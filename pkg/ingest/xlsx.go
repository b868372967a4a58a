package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
)

// ParseXLSX reads the first worksheet of an XLSX file. The first row is the
// header; remaining rows become data. Cells arrive as display strings from
// excelize, so typing is left to schema inference like the CSV path.
func ParseXLSX(content []byte) (*ParsedTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid XLSX: %v", apperrors.ErrParse, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: XLSX file has no worksheets", apperrors.ErrParse)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read worksheet: %v", apperrors.ErrParse, err)
	}

	// Drop blank rows.
	filtered := records[:0]
	for _, rec := range records {
		blank := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			filtered = append(filtered, rec)
		}
	}

	if len(filtered) < 2 {
		return nil, fmt.Errorf("%w: XLSX file is empty or has no data rows", apperrors.ErrParse)
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

package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"name", "age"},
		{"Alice", 30},
		{"Bob", 25},
	})

	table, err := ParseXLSX(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Alice", table.Rows[0]["name"].Text)
	assert.Equal(t, "30", table.Rows[0]["age"].Text)
}

func TestParseXLSX_HeaderOnly(t *testing.T) {
	content := buildWorkbook(t, [][]any{{"name", "age"}})

	_, err := ParseXLSX(content)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

func TestParseXLSX_InvalidContent(t *testing.T) {
	_, err := ParseXLSX([]byte("not a zip archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

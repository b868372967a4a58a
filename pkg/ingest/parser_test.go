package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
)

func TestParseCSV(t *testing.T) {
	content := []byte("name,age\nAlice,30\nBob,25\n")

	table, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Alice", table.Rows[0]["name"].Text)
	assert.Equal(t, "30", table.Rows[0]["age"].Text)
	assert.Equal(t, "Bob", table.Rows[1]["name"].Text)
}

func TestParseCSV_TrimsWhitespaceAndSkipsBlankLines(t *testing.T) {
	content := []byte("name , city \nAlice , Lisbon\n\n  ,  \nBob, Porto\n")

	table, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "city"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Lisbon", table.Rows[0]["city"].Text)
}

func TestParseCSV_ToleratesColumnCountDrift(t *testing.T) {
	content := []byte("a,b,c\n1,2\n1,2,3,4\n")

	table, err := ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	// Short row leaves the trailing column absent.
	_, ok := table.Rows[0]["c"]
	assert.False(t, ok)

	// Long row drops the extra field.
	assert.Equal(t, "3", table.Rows[1]["c"].Text)
	assert.Len(t, table.Rows[1], 3)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"header only", "name,age\n"},
		{"blank lines only", "\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrParse)
		})
	}
}

func TestParseJSON_ArrayRoot(t *testing.T) {
	content := []byte(`[
		{"name": "Alice", "age": 30, "active": true},
		{"name": "Bob", "age": 25.5, "active": false}
	]`)

	table, err := ParseJSON(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "active"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, KindString, table.Rows[0]["name"].Kind)
	assert.Equal(t, "Alice", table.Rows[0]["name"].Text)

	assert.Equal(t, KindNumber, table.Rows[0]["age"].Kind)
	assert.Equal(t, "30", table.Rows[0]["age"].Text)
	assert.Equal(t, "25.5", table.Rows[1]["age"].Text)

	assert.Equal(t, KindBool, table.Rows[0]["active"].Kind)
	assert.True(t, table.Rows[0]["active"].Flag)
}

func TestParseJSON_SingleObjectRoot(t *testing.T) {
	table, err := ParseJSON([]byte(`{"name": "Alice", "age": 30}`))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Alice", table.Rows[0]["name"].Text)
}

func TestParseJSON_WrappedArrayProperty(t *testing.T) {
	content := []byte(`{"meta": "export", "records": [{"id": 1}, {"id": 2}], "other": [{"x": 9}]}`)

	table, err := ParseJSON(content)
	require.NoError(t, err)

	// First array-valued property wins.
	assert.Equal(t, []string{"id"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2", table.Rows[1]["id"].Text)
}

func TestParseJSON_SparseRowsUnionColumns(t *testing.T) {
	content := []byte(`[{"a": 1}, {"a": 2, "b": "x"}]`)

	table, err := ParseJSON(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, table.Columns)
	_, ok := table.Rows[0]["b"]
	assert.False(t, ok)
}

func TestParseJSON_NullAndNested(t *testing.T) {
	content := []byte(`[{"a": null, "b": {"k": 1}, "c": [1, 2]}]`)

	table, err := ParseJSON(content)
	require.NoError(t, err)

	assert.True(t, table.Rows[0]["a"].IsNull())
	assert.Equal(t, `{"k":1}`, table.Rows[0]["b"].Text)
	assert.Equal(t, `[1,2]`, table.Rows[0]["c"].Text)
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid JSON", `{not json`},
		{"scalar root", `42`},
		{"empty array", `[]`},
		{"array of scalars", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrParse)
		})
	}
}

func TestParse_DispatchesOnFileType(t *testing.T) {
	table, err := Parse(models.FileTypeCSV, []byte("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, table.Columns)

	_, err = Parse(models.FileType("parquet"), []byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jmatos87/queryflow/pkg/models"
)

var testSchema = []models.ColumnSchema{
	{Name: "name", Type: models.ColumnTypeText, Sample: []any{"Alice", "Bob"}},
	{Name: "age", Type: models.ColumnTypeInteger, Nullable: true, Sample: []any{int64(30), int64(25), int64(41), int64(19)}},
}

func TestBuildSQLGenerationPrompt(t *testing.T) {
	prompt := BuildSQLGenerationPrompt("who is oldest?", "ds_abc123def456", testSchema, 1000)

	assert.Contains(t, prompt, `"ds_abc123def456"`)
	assert.Contains(t, prompt, `"name" (text)`)
	assert.Contains(t, prompt, `"age" (integer, nullable)`)
	assert.Contains(t, prompt, "LIMIT")
	assert.Contains(t, prompt, "1000")
	assert.Contains(t, prompt, "who is oldest?")
	assert.Contains(t, prompt, "Only generate SELECT statements")
}

func TestDescribeSchema_CapsSamplesAtThree(t *testing.T) {
	desc := DescribeSchema(testSchema)

	assert.Contains(t, desc, "sample values: Alice, Bob")
	assert.Contains(t, desc, "sample values: 30, 25, 41")
	assert.NotContains(t, desc, "19")
}

func TestDescribeSchema_OmitsEmptySamples(t *testing.T) {
	desc := DescribeSchema([]models.ColumnSchema{
		{Name: "empty_col", Type: models.ColumnTypeText},
	})

	assert.Contains(t, desc, `"empty_col" (text)`)
	assert.NotContains(t, desc, "sample values")
}

func TestBuildChatSystemPrompt(t *testing.T) {
	datasets := []DatasetContext{
		{Name: "people", TableName: "ds_aaaaaaaaaaaa", Schema: testSchema, RowCount: 12},
		{Name: "orders", TableName: "ds_bbbbbbbbbbbb", Schema: testSchema, RowCount: 7},
	}

	prompt := BuildChatSystemPrompt(datasets, 1000)

	assert.Contains(t, prompt, `"ds_aaaaaaaaaaaa"`)
	assert.Contains(t, prompt, `"ds_bbbbbbbbbbbb"`)
	assert.Contains(t, prompt, "12 rows")
	assert.Contains(t, prompt, `{"message":`)
	assert.Contains(t, prompt, "Only SELECT statements")

	// Both dataset sections appear before the response contract.
	contractPos := strings.Index(prompt, `{"message":`)
	assert.Less(t, strings.Index(prompt, "ds_bbbbbbbbbbbb"), contractPos)
}

// Package prompts builds the text sent to the generation provider.
package prompts

import (
	"fmt"
	"strings"

	"github.com/Jmatos87/queryflow/pkg/models"
)

// BuildSQLGenerationPrompt creates the single-dataset prompt: table name,
// column schema with sample values, and the constraints the generator must
// honor.
func BuildSQLGenerationPrompt(question, tableName string, schema []models.ColumnSchema, maxRows int) string {
	var prompt strings.Builder

	prompt.WriteString("You are a SQL expert. Given the following table and schema, translate the user's natural language question into a PostgreSQL SELECT query.\n\n")
	prompt.WriteString(fmt.Sprintf("Table name: %q\nColumns:\n", tableName))
	prompt.WriteString(DescribeSchema(schema))

	prompt.WriteString("\nRules:\n")
	prompt.WriteString("- Only generate SELECT statements\n")
	prompt.WriteString(fmt.Sprintf("- Use the exact table name %q with double quotes\n", tableName))
	prompt.WriteString("- Use double quotes around column names\n")
	prompt.WriteString("- Do not use DROP, DELETE, INSERT, UPDATE, ALTER, or any destructive operations\n")
	prompt.WriteString(fmt.Sprintf("- Limit results to %d rows maximum using LIMIT\n", maxRows))
	prompt.WriteString("- Return ONLY the SQL query, no explanations or markdown\n")

	prompt.WriteString(fmt.Sprintf("\nUser question: %s", question))

	return prompt.String()
}

// DescribeSchema renders a column list with types, nullability, and up to
// three sample values per column.
func DescribeSchema(schema []models.ColumnSchema) string {
	var desc strings.Builder
	for _, col := range schema {
		nullable := ""
		if col.Nullable {
			nullable = ", nullable"
		}
		desc.WriteString(fmt.Sprintf("  - %q (%s%s)", col.Name, col.Type, nullable))

		samples := col.Sample
		if len(samples) > 3 {
			samples = samples[:3]
		}
		if len(samples) > 0 {
			parts := make([]string, 0, len(samples))
			for _, s := range samples {
				parts = append(parts, fmt.Sprintf("%v", s))
			}
			desc.WriteString("; sample values: ")
			desc.WriteString(strings.Join(parts, ", "))
		}
		desc.WriteString("\n")
	}
	return desc.String()
}

package prompts

import (
	"fmt"
	"strings"

	"github.com/Jmatos87/queryflow/pkg/models"
)

// DatasetContext provides the schema context for one dataset in chat mode.
type DatasetContext struct {
	Name      string
	TableName string
	Schema    []models.ColumnSchema
	RowCount  int
}

// BuildChatSystemPrompt creates the chat-mode system prompt covering every
// dataset the session owns, and pins the structured response contract: a
// JSON object with a "message" field and an optional "sql" field.
func BuildChatSystemPrompt(datasets []DatasetContext, maxRows int) string {
	var prompt strings.Builder

	prompt.WriteString("You are a data analyst assistant. The user has uploaded the following datasets, each loaded into its own PostgreSQL table:\n\n")

	for _, ds := range datasets {
		prompt.WriteString(fmt.Sprintf("## Dataset %q (table %q, %d rows)\n", ds.Name, ds.TableName, ds.RowCount))
		prompt.WriteString(DescribeSchema(ds.Schema))
		prompt.WriteString("\n")
	}

	prompt.WriteString("Respond with ONLY a JSON object of this shape:\n")
	prompt.WriteString(`{"message": "<your answer as plain prose>", "sql": "<optional PostgreSQL SELECT query>"}` + "\n\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Include the \"sql\" field only when a query would help answer the question\n")
	prompt.WriteString("- Only SELECT statements, against the table names listed above, with double-quoted identifiers\n")
	prompt.WriteString(fmt.Sprintf("- Limit query results to %d rows maximum using LIMIT\n", maxRows))
	prompt.WriteString("- Never include SQL, code fences, or JSON syntax inside the \"message\" prose\n")

	return prompt.String()
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/services"
)

// DatasetToolDeps contains dependencies for the dataset tools.
type DatasetToolDeps struct {
	DatasetService services.DatasetService
	QueryService   services.QueryService
	Logger         *zap.Logger
}

// RegisterDatasetTools registers the describe_dataset and query_dataset
// tools.
func RegisterDatasetTools(s *server.MCPServer, deps *DatasetToolDeps) {
	registerDescribeDatasetTool(s, deps)
	registerQueryDatasetTool(s, deps)
}

type columnDescription struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Sample   []any  `json:"sample,omitempty"`
}

type datasetDescription struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	TableName string              `json:"table_name"`
	FileType  string              `json:"file_type"`
	RowCount  int                 `json:"row_count"`
	Columns   []columnDescription `json:"columns"`
}

// registerDescribeDatasetTool exposes dataset schemas so a caller can see
// which columns exist before asking questions.
func registerDescribeDatasetTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"describe_dataset",
		mcp.WithDescription(
			"Describe an uploaded dataset: its inferred column types, nullability, "+
				"sample values, and row count. Pass a dataset_id to describe one dataset, "+
				"or a session_id to list every dataset the session owns.",
		),
		mcp.WithString(
			"dataset_id",
			mcp.Description("UUID of the dataset to describe"),
		),
		mcp.WithString(
			"session_id",
			mcp.Description("Session whose datasets should be listed when no dataset_id is given"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if rawID := req.GetString("dataset_id", ""); rawID != "" {
			datasetID, err := uuid.Parse(rawID)
			if err != nil {
				return NewErrorResult("invalid_dataset_id", "dataset_id must be a UUID"), nil
			}

			dataset, err := deps.DatasetService.Get(ctx, datasetID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return NewErrorResult("dataset_not_found", fmt.Sprintf("no dataset with ID %s", rawID)), nil
				}
				return nil, fmt.Errorf("failed to load dataset: %w", err)
			}

			jsonResult, _ := json.Marshal(describeDataset(dataset))
			return mcp.NewToolResultText(string(jsonResult)), nil
		}

		sessionID := req.GetString("session_id", "")
		if sessionID == "" {
			return NewErrorResult("missing_parameter", "provide dataset_id or session_id"), nil
		}

		datasets, err := deps.DatasetService.List(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to list datasets: %w", err)
		}

		descriptions := make([]datasetDescription, len(datasets))
		for i, d := range datasets {
			descriptions[i] = describeDataset(d)
		}

		jsonResult, _ := json.Marshal(struct {
			Datasets []datasetDescription `json:"datasets"`
		}{Datasets: descriptions})
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerQueryDatasetTool runs the full question-to-answer pipeline over one
// dataset.
func registerQueryDatasetTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"query_dataset",
		mcp.WithDescription(
			"Ask a natural-language question about an uploaded dataset. The question is "+
				"translated to SQL, validated, and executed read-only; the tool returns the "+
				"generated SQL and the result rows.",
		),
		mcp.WithString(
			"dataset_id",
			mcp.Required(),
			mcp.Description("UUID of the dataset to query"),
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("Natural-language question about the dataset"),
		),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("Session the query belongs to"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawID, err := req.RequireString("dataset_id")
		if err != nil {
			return nil, err
		}
		question, err := req.RequireString("question")
		if err != nil {
			return nil, err
		}
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}

		datasetID, err := uuid.Parse(rawID)
		if err != nil {
			return NewErrorResult("invalid_dataset_id", "dataset_id must be a UUID"), nil
		}

		result, err := deps.QueryService.Ask(ctx, &services.QueryRequest{
			DatasetID: datasetID,
			Question:  question,
			SessionID: sessionID,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				return NewErrorResult("dataset_not_found", fmt.Sprintf("no dataset with ID %s", rawID)), nil
			case errors.Is(err, apperrors.ErrValidation):
				return NewErrorResult("invalid_request", err.Error()), nil
			case errors.Is(err, apperrors.ErrSQLSafety):
				return NewErrorResult("sql_rejected", err.Error()), nil
			default:
				return nil, fmt.Errorf("query failed: %w", err)
			}
		}

		deps.Logger.Info("Answered MCP query",
			zap.String("dataset_id", rawID),
			zap.Int("rows", result.RowCount))

		jsonResult, _ := json.Marshal(result)
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func describeDataset(d *models.Dataset) datasetDescription {
	columns := make([]columnDescription, len(d.Schema))
	for i, col := range d.Schema {
		columns[i] = columnDescription{
			Name:     col.Name,
			Type:     string(col.Type),
			Nullable: col.Nullable,
			Sample:   col.Sample,
		}
	}
	return datasetDescription{
		ID:        d.ID.String(),
		Name:      d.Name,
		TableName: d.TableName,
		FileType:  string(d.FileType),
		RowCount:  d.RowCount,
		Columns:   columns,
	}
}

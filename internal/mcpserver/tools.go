// Package mcpserver exposes comparison operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/fileinfo"
	"github.com/bcompare-mcp/bcompare-go/internal/operations"
)

// Service is the facade the tools call.
type Service interface {
	Run(ctx context.Context, op domain.Operation) domain.Result
	Info(ctx context.Context) (operations.ToolInfo, error)
	Formats() operations.FormatCatalog
}

// RegisterTools registers all comparison tools on the given server.
func RegisterTools(server *mcp.Server, svc Service, cat config.Catalog) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "compare_files",
			Description: "Compare two files with Beyond Compare and classify the result",
		},
		operationHandler[operations.CompareFilesRequest](svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "compare_folders",
			Description: "Compare two folders, optionally recursively and with exclude globs",
		},
		operationHandler[operations.CompareFoldersRequest](svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "sync_folders",
			Description: "Synchronize two folders; previews by default and only writes when preview_only is false",
		},
		operationHandler[operations.SyncFoldersRequest](svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "generate_report",
			Description: "Write a comparison report (html, xml, csv or text) for two files or folders",
		},
		operationHandler[operations.GenerateReportRequest](svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "merge_files",
			Description: "Automatically merge two files, optionally against a common base",
		},
		operationHandler[operations.MergeFilesRequest](svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_beyond_compare_info",
			Description: "Show where the Beyond Compare executable is and what it reports about itself",
		},
		infoHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_file_formats",
			Description: "List supported file formats, report types and sync directions",
		},
		formatsHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_file_info",
			Description: "Get size, type, permissions and checksum of a file or folder",
		},
		fileInfoHandler(cat),
	)
}

// request is any payload that maps onto an operation.
type request interface {
	Operation() domain.Operation
}

func operationHandler[In request](svc Service) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		res := svc.Run(ctx, input.Operation())
		return resultWithSummary(operations.Summarize(res), res, res.Failure != nil)
	}
}

type noInput struct{}

func infoHandler(svc Service) mcp.ToolHandlerFor[noInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ noInput) (*mcp.CallToolResult, any, error) {
		info, err := svc.Info(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Beyond Compare is not available: %v", err)), nil, nil
		}
		return textResult(info)
	}
}

func formatsHandler(svc Service) mcp.ToolHandlerFor[noInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ noInput) (*mcp.CallToolResult, any, error) {
		return textResult(svc.Formats())
	}
}

type fileInfoInput struct {
	FilePath string `json:"file_path" jsonschema:"path to the file or folder to inspect"`
}

func fileInfoHandler(cat config.Catalog) mcp.ToolHandlerFor[fileInfoInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input fileInfoInput) (*mcp.CallToolResult, any, error) {
		info, err := fileinfo.Inspect(input.FilePath, cat)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(info)
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	return resultWithSummary("", v, false)
}

// resultWithSummary renders an optional summary line followed by v as
// indented JSON.
func resultWithSummary(summary string, v any, isError bool) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	text := string(data)
	if summary != "" {
		text = summary + "\n\n" + text
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: isError,
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, board common.BoardService) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, board)
	registerColumnTools(mcpSrv, board)
	registerTaskTools(mcpSrv, board)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "kanboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the read-only `kanboard.get_board` tool.
func registerBoardTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.get_board",
			mcp.WithDescription("Return every column and task in board order."),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			snapshot, err := board.GetBoard(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", snapshot)
		},
	)
}

// registerColumnTools registers column add/rename/delete/move tools.
func registerColumnTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_column",
			mcp.WithDescription("Append a column. A blank title uses the numbered default."),
			mcp.WithString("title", mcp.Description("Column title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			column, err := board.AddColumn(ctx, common.AddColumnRequest{Title: req.GetString("title", "")})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_column", column)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.rename_column",
			mcp.WithDescription("Rename a column. Whitespace is trimmed; a blank title keeps the current one."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := board.RenameColumn(ctx, common.RenameColumnRequest{ID: columnID, Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("rename_column", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.delete_column",
			mcp.WithDescription("Delete a column and every task in it."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithDestructiveHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.DeleteColumn(ctx, columnID); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_column", map[string]any{"deleted": columnID})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.move_column",
			mcp.WithDescription("Move a column to the position of a target column, or of the column holding a target task."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column to move")),
			mcp.WithString("target_kind", mcp.Required(), mcp.Description("Drop target kind"), mcp.Enum(string(domain.DragKindColumn), string(domain.DragKindTask))),
			mcp.WithString("target_id", mcp.Required(), mcp.Description("Drop target identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			target, err := requireTarget(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			snapshot, err := board.MoveColumn(ctx, columnID, target)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_column", snapshot)
		},
	)
}

// registerTaskTools registers task add/edit/delete/move tools.
func registerTaskTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_task",
			mcp.WithDescription("Append a task to the end of a column. Blank content uses the numbered default."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithString("content", mcp.Description("Task content (markdown)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := board.AddTask(ctx, common.AddTaskRequest{
				ColumnID: columnID,
				Content:  req.GetString("content", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.edit_task",
			mcp.WithDescription("Replace task content. Whitespace is trimmed; blank content keeps the current text."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := board.EditTask(ctx, common.EditTaskRequest{ID: taskID, Content: content})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("edit_task", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.delete_task",
			mcp.WithDescription("Delete one task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithDestructiveHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.DeleteTask(ctx, taskID); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_task", map[string]any{"deleted": taskID})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.move_task",
			mcp.WithDescription("Move a task before a target task, or to the end of a target column."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to move")),
			mcp.WithString("target_kind", mcp.Required(), mcp.Description("Drop target kind"), mcp.Enum(string(domain.DragKindColumn), string(domain.DragKindTask))),
			mcp.WithString("target_id", mcp.Required(), mcp.Description("Drop target identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			target, err := requireTarget(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			snapshot, err := board.MoveTask(ctx, taskID, target)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", snapshot)
		},
	)
}

// requireTarget reads the target_kind/target_id pair.
func requireTarget(req mcp.CallToolRequest) (domain.DragItem, error) {
	rawKind, err := req.RequireString("target_kind")
	if err != nil {
		return domain.DragItem{}, err
	}
	kind, err := domain.ParseDragKind(rawKind)
	if err != nil {
		return domain.DragItem{}, err
	}
	id, err := req.RequireString("target_id")
	if err != nil {
		return domain.DragItem{}, err
	}
	return domain.DragItem{Kind: kind, ID: id}, nil
}

// jsonResult encodes one tool payload.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrStorage):
		return mcp.NewToolResultError("storage_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

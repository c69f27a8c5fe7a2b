package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/session"
)

func formatParam() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("'natural' (markdown document) or 'structured' (JSON). Defaults to the active panel."),
		mcp.Enum(string(export.FormatNatural), string(export.FormatStructured)),
	)
}

// ─── PromptPreviewTool ──────────────────────────────────────────────────────

// PromptPreviewTool handles the prompt_preview MCP tool.
type PromptPreviewTool struct {
	session *session.Session
}

// NewPromptPreviewTool creates a PromptPreviewTool.
func NewPromptPreviewTool(s *session.Session) *PromptPreviewTool {
	return &PromptPreviewTool{session: s}
}

// Definition returns the MCP tool definition for prompt_preview.
func (t *PromptPreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("prompt_preview",
		mcp.WithDescription("Render the project prompt from the current form."),
		formatParam(),
	)
}

// Handle processes the prompt_preview tool call.
func (t *PromptPreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, out, err := t.session.Render(req.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// ─── PromptSelectPanelTool ──────────────────────────────────────────────────

// PromptSelectPanelTool handles the prompt_select_panel MCP tool.
type PromptSelectPanelTool struct {
	session *session.Session
}

// NewPromptSelectPanelTool creates a PromptSelectPanelTool.
func NewPromptSelectPanelTool(s *session.Session) *PromptSelectPanelTool {
	return &PromptSelectPanelTool{session: s}
}

// Definition returns the MCP tool definition for prompt_select_panel.
func (t *PromptSelectPanelTool) Definition() mcp.Tool {
	return mcp.NewTool("prompt_select_panel",
		mcp.WithDescription("Choose the active preview panel used by preview, copy and download."),
		mcp.WithString("panel",
			mcp.Required(),
			mcp.Description("'natural' or 'structured'"),
			mcp.Enum(string(export.FormatNatural), string(export.FormatStructured)),
		),
	)
}

// Handle processes the prompt_select_panel tool call.
func (t *PromptSelectPanelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	panel, err := t.session.SelectPanel(req.GetString("panel", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Active panel: %s", panel)), nil
}

// ─── PromptCopyTool ─────────────────────────────────────────────────────────

// PromptCopyTool handles the prompt_copy MCP tool.
type PromptCopyTool struct {
	session *session.Session
}

// NewPromptCopyTool creates a PromptCopyTool.
func NewPromptCopyTool(s *session.Session) *PromptCopyTool {
	return &PromptCopyTool{session: s}
}

// Definition returns the MCP tool definition for prompt_copy.
func (t *PromptCopyTool) Definition() mcp.Tool {
	return mcp.NewTool("prompt_copy",
		mcp.WithDescription("Copy the rendered prompt to the system clipboard of the machine running the server."),
		formatParam(),
	)
}

// Handle processes the prompt_copy tool call.
func (t *PromptCopyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := t.session.Export(req.GetString("format", ""), export.ActionCopy); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Copy failed: %v", err)), nil
	}
	return mcp.NewToolResultText(session.NoticeCopied), nil
}

// ─── PromptDownloadTool ─────────────────────────────────────────────────────

// PromptDownloadTool handles the prompt_download MCP tool.
type PromptDownloadTool struct {
	session *session.Session
}

// NewPromptDownloadTool creates a PromptDownloadTool.
func NewPromptDownloadTool(s *session.Session) *PromptDownloadTool {
	return &PromptDownloadTool{session: s}
}

// Definition returns the MCP tool definition for prompt_download.
func (t *PromptDownloadTool) Definition() mcp.Tool {
	return mcp.NewTool("prompt_download",
		mcp.WithDescription("Write the rendered prompt to prompt.md or prompt.json in the download directory."),
		formatParam(),
	)
}

// Handle processes the prompt_download tool call.
func (t *PromptDownloadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.session.Export(req.GetString("format", ""), export.ActionDownload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Download failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved `%s`", res.Path)), nil
}

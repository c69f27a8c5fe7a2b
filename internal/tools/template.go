package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/session"
	"github.com/HendryAvila/promptforge/internal/templates"
)

// ─── TemplateListTool ───────────────────────────────────────────────────────

// TemplateListTool handles the template_list MCP tool.
type TemplateListTool struct {
	session *session.Session
}

// NewTemplateListTool creates a TemplateListTool.
func NewTemplateListTool(s *session.Session) *TemplateListTool {
	return &TemplateListTool{session: s}
}

// Definition returns the MCP tool definition for template_list.
func (t *TemplateListTool) Definition() mcp.Tool {
	return mcp.NewTool("template_list",
		mcp.WithDescription("List saved templates in the order they were created."),
	)
}

// Handle processes the template_list tool call.
func (t *TemplateListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := t.session.Templates()
	if len(list) == 0 {
		return mcp.NewToolResultText("No saved templates. Fill out the form and call `template_save`."), nil
	}

	editing := t.session.State().EditingID
	var b strings.Builder
	fmt.Fprintf(&b, "# Saved Templates (%d)\n\n", len(list))
	for _, tpl := range list {
		line := "- " + formatTemplate(tpl)
		if tpl.ID == editing {
			line += " ✏️ editing"
		}
		b.WriteString(line + "\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── TemplateSaveTool ───────────────────────────────────────────────────────

// TemplateSaveTool handles the template_save MCP tool.
type TemplateSaveTool struct {
	session *session.Session
}

// NewTemplateSaveTool creates a TemplateSaveTool.
func NewTemplateSaveTool(s *session.Session) *TemplateSaveTool {
	return &TemplateSaveTool{session: s}
}

// Definition returns the MCP tool definition for template_save.
func (t *TemplateSaveTool) Definition() mcp.Tool {
	return mcp.NewTool("template_save",
		mcp.WithDescription(
			"Save the current form as a named template. While editing a template "+
				"(see template_edit) the edited template is updated instead.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name"),
		),
	)
}

// Handle processes the template_save tool call.
func (t *TemplateSaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.session.SaveTemplate(req.GetString("name", ""))
	switch {
	case errors.Is(err, templates.ErrEmptyName):
		return mcp.NewToolResultError("Please enter a template name"), nil
	case errors.Is(err, templates.ErrNotFound):
		return mcp.NewToolResultError("The template being edited no longer exists. Save again to create a new one."), nil
	case err != nil:
		return nil, fmt.Errorf("saving template: %w", err)
	}
	return mcp.NewToolResultText(res.Notice + "\n\n" + formatTemplate(res.Template)), nil
}

// ─── TemplateLoadTool ───────────────────────────────────────────────────────

// TemplateLoadTool handles the template_load MCP tool.
type TemplateLoadTool struct {
	session *session.Session
}

// NewTemplateLoadTool creates a TemplateLoadTool.
func NewTemplateLoadTool(s *session.Session) *TemplateLoadTool {
	return &TemplateLoadTool{session: s}
}

// Definition returns the MCP tool definition for template_load.
func (t *TemplateLoadTool) Definition() mcp.Tool {
	return mcp.NewTool("template_load",
		mcp.WithDescription("Replace the current form with a copy of a saved template."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template ID"),
		),
	)
}

// Handle processes the template_load tool call.
func (t *TemplateLoadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	tpl, err := t.session.LoadTemplate(id)
	if err != nil {
		return missingTemplate(id), nil
	}
	return mcp.NewToolResultText("Loaded " + formatTemplate(tpl) + "\n\n" + formatState(t.session.State())), nil
}

// ─── TemplateEditTool ───────────────────────────────────────────────────────

// TemplateEditTool handles the template_edit MCP tool.
type TemplateEditTool struct {
	session *session.Session
}

// NewTemplateEditTool creates a TemplateEditTool.
func NewTemplateEditTool(s *session.Session) *TemplateEditTool {
	return &TemplateEditTool{session: s}
}

// Definition returns the MCP tool definition for template_edit.
func (t *TemplateEditTool) Definition() mcp.Tool {
	return mcp.NewTool("template_edit",
		mcp.WithDescription(
			"Load a template and start editing it. The next template_save updates "+
				"this template in place instead of creating a new one.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template ID"),
		),
	)
}

// Handle processes the template_edit tool call.
func (t *TemplateEditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	tpl, err := t.session.EditTemplate(id)
	if err != nil {
		return missingTemplate(id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Editing %s. Change fields, then call `template_save` to update it or `template_cancel_edit` to stop.",
		formatTemplate(tpl),
	)), nil
}

// ─── TemplateCancelEditTool ─────────────────────────────────────────────────

// TemplateCancelEditTool handles the template_cancel_edit MCP tool.
type TemplateCancelEditTool struct {
	session *session.Session
}

// NewTemplateCancelEditTool creates a TemplateCancelEditTool.
func NewTemplateCancelEditTool(s *session.Session) *TemplateCancelEditTool {
	return &TemplateCancelEditTool{session: s}
}

// Definition returns the MCP tool definition for template_cancel_edit.
func (t *TemplateCancelEditTool) Definition() mcp.Tool {
	return mcp.NewTool("template_cancel_edit",
		mcp.WithDescription("Stop editing a template. The form keeps its values; the template is unchanged."),
	)
}

// Handle processes the template_cancel_edit tool call.
func (t *TemplateCancelEditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.session.CancelEdit(); err != nil {
		return mcp.NewToolResultError("No template is being edited."), nil
	}
	return mcp.NewToolResultText("Stopped editing. The next save creates a new template."), nil
}

// ─── TemplateCloneTool ──────────────────────────────────────────────────────

// TemplateCloneTool handles the template_clone MCP tool.
type TemplateCloneTool struct {
	session *session.Session
}

// NewTemplateCloneTool creates a TemplateCloneTool.
func NewTemplateCloneTool(s *session.Session) *TemplateCloneTool {
	return &TemplateCloneTool{session: s}
}

// Definition returns the MCP tool definition for template_clone.
func (t *TemplateCloneTool) Definition() mcp.Tool {
	return mcp.NewTool("template_clone",
		mcp.WithDescription("Duplicate a saved template under a new ID."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("ID of the template to duplicate"),
		),
		mcp.WithString("name",
			mcp.Description("Name for the copy. Defaults to the source name."),
		),
	)
}

// Handle processes the template_clone tool call.
func (t *TemplateCloneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	tpl, err := t.session.CloneTemplate(id, req.GetString("name", ""))
	if err != nil {
		return missingTemplate(id), nil
	}
	return mcp.NewToolResultText("Cloned as " + formatTemplate(tpl)), nil
}

// ─── TemplateDeleteTool ─────────────────────────────────────────────────────

// TemplateDeleteTool handles the template_delete MCP tool.
type TemplateDeleteTool struct {
	session *session.Session
}

// NewTemplateDeleteTool creates a TemplateDeleteTool.
func NewTemplateDeleteTool(s *session.Session) *TemplateDeleteTool {
	return &TemplateDeleteTool{session: s}
}

// Definition returns the MCP tool definition for template_delete.
func (t *TemplateDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("template_delete",
		mcp.WithDescription(
			"Delete a saved template. Requires confirm=true; without it the tool only "+
				"describes what would be deleted.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template ID"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true to actually delete"),
		),
	)
}

// Handle processes the template_delete tool call.
func (t *TemplateDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	if !boolArg(req, "confirm", false) {
		tpl, found := t.session.PeekTemplate(id)
		if !found {
			return mcp.NewToolResultText(fmt.Sprintf("Template %d does not exist; nothing to delete.", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"This will permanently delete %s. Call again with `confirm=true` to proceed.",
			formatTemplate(tpl),
		)), nil
	}

	tpl, removed := t.session.DeleteTemplate(id)
	if !removed {
		return mcp.NewToolResultText(fmt.Sprintf("Template %d does not exist; nothing to delete.", id)), nil
	}
	return mcp.NewToolResultText("Deleted " + formatTemplate(tpl)), nil
}

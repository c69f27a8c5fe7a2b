package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/session"
)

func fieldNames() []string {
	out := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		out[i] = string(f)
	}
	return out
}

// ─── FormGetTool ────────────────────────────────────────────────────────────

// FormGetTool handles the form_get MCP tool.
type FormGetTool struct {
	session *session.Session
}

// NewFormGetTool creates a FormGetTool.
func NewFormGetTool(s *session.Session) *FormGetTool {
	return &FormGetTool{session: s}
}

// Definition returns the MCP tool definition for form_get.
func (t *FormGetTool) Definition() mcp.Tool {
	return mcp.NewTool("form_get",
		mcp.WithDescription(
			"Show the current project form: every field value, any pending custom-value "+
				"capture, whether a template is being edited, and the active preview panel.",
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default) or 'json'"),
			mcp.Enum("markdown", "json"),
		),
	)
}

// Handle processes the form_get tool call.
func (t *FormGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := t.session.State()
	if req.GetString("format", "markdown") == "json" {
		return jsonResult(st)
	}
	return mcp.NewToolResultText(formatState(st)), nil
}

// ─── FormOptionsTool ────────────────────────────────────────────────────────

// FormOptionsTool handles the form_options MCP tool.
type FormOptionsTool struct {
	session *session.Session
}

// NewFormOptionsTool creates a FormOptionsTool.
func NewFormOptionsTool(s *session.Session) *FormOptionsTool {
	return &FormOptionsTool{session: s}
}

// Definition returns the MCP tool definition for form_options.
func (t *FormOptionsTool) Definition() mcp.Tool {
	return mcp.NewTool("form_options",
		mcp.WithDescription(
			"List the selectable values for a form field given the current form. "+
				"Language options depend on the domain; framework and package manager "+
				"options depend on the language.",
		),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("Field name"),
			mcp.Enum(fieldNames()...),
		),
	)
}

// Handle processes the form_options tool call.
func (t *FormOptionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := t.session.Options(req.GetString("field", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Options for `%s`\n\n", opts.Field)
	if !opts.Enabled {
		b.WriteString("_Disabled until its parent field is set._\n\n")
	}
	if opts.Field.IsText() {
		b.WriteString("Free text field.\n")
	}
	for _, o := range opts.Options {
		marker := "-"
		if o == opts.Current {
			marker = "- ✅"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, o)
	}
	if opts.AllowsCustom {
		b.WriteString("\nA custom value is allowed: call `form_set_field` with `other=true`.\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── FormSetFieldTool ───────────────────────────────────────────────────────

// FormSetFieldTool handles the form_set_field MCP tool.
type FormSetFieldTool struct {
	session *session.Session
}

// NewFormSetFieldTool creates a FormSetFieldTool.
func NewFormSetFieldTool(s *session.Session) *FormSetFieldTool {
	return &FormSetFieldTool{session: s}
}

// Definition returns the MCP tool definition for form_set_field.
func (t *FormSetFieldTool) Definition() mcp.Tool {
	return mcp.NewTool("form_set_field",
		mcp.WithDescription(
			"Set a form field. Changing the domain clears language, framework and package "+
				"manager; changing the language clears framework and package manager. "+
				"For configFiles the value is toggled in or out of the set. "+
				"Set other=true to start entering a custom value, then call form_confirm_other.",
		),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("Field name"),
			mcp.Enum(fieldNames()...),
		),
		mcp.WithString("value",
			mcp.Description("New value. Empty clears the field."),
		),
		mcp.WithBoolean("other",
			mcp.Description("Request a custom value instead of a listed option"),
		),
	)
}

// Handle processes the form_set_field tool call.
func (t *FormSetFieldTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field := req.GetString("field", "")

	choice := form.Known(req.GetString("value", ""))
	if boolArg(req, "other", false) {
		choice = form.Other()
	}

	awaiting, err := t.session.Select(field, choice)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if awaiting {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Waiting for a custom `%s` value. Call `form_confirm_other` with the text, or `form_cancel_other`.",
			field,
		)), nil
	}
	return mcp.NewToolResultText(formatState(t.session.State())), nil
}

// ─── FormToggleConfigFileTool ───────────────────────────────────────────────

// FormToggleConfigFileTool handles the form_toggle_config_file MCP tool.
type FormToggleConfigFileTool struct {
	session *session.Session
}

// NewFormToggleConfigFileTool creates a FormToggleConfigFileTool.
func NewFormToggleConfigFileTool(s *session.Session) *FormToggleConfigFileTool {
	return &FormToggleConfigFileTool{session: s}
}

// Definition returns the MCP tool definition for form_toggle_config_file.
func (t *FormToggleConfigFileTool) Definition() mcp.Tool {
	return mcp.NewTool("form_toggle_config_file",
		mcp.WithDescription("Add a configuration file to the selection, or remove it if already selected."),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Configuration file, e.g. Dockerfile"),
		),
	)
}

// Handle processes the form_toggle_config_file tool call.
func (t *FormToggleConfigFileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	awaiting, err := t.session.ToggleConfigFile(req.GetString("value", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if awaiting {
		return mcp.NewToolResultText(
			"Waiting for a custom `configFiles` value. Call `form_confirm_other` with the text, or `form_cancel_other`.",
		), nil
	}
	files := t.session.Spec().ConfigFiles
	if len(files) == 0 {
		return mcp.NewToolResultText("No configuration files selected."), nil
	}
	return mcp.NewToolResultText("Configuration files: " + strings.Join(files, ", ")), nil
}

// ─── FormConfirmOtherTool ───────────────────────────────────────────────────

// FormConfirmOtherTool handles the form_confirm_other MCP tool.
type FormConfirmOtherTool struct {
	session *session.Session
}

// NewFormConfirmOtherTool creates a FormConfirmOtherTool.
func NewFormConfirmOtherTool(s *session.Session) *FormConfirmOtherTool {
	return &FormConfirmOtherTool{session: s}
}

// Definition returns the MCP tool definition for form_confirm_other.
func (t *FormConfirmOtherTool) Definition() mcp.Tool {
	return mcp.NewTool("form_confirm_other",
		mcp.WithDescription("Commit the custom value for the field opened with other=true. Blank text cancels."),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Custom value"),
		),
	)
}

// Handle processes the form_confirm_other tool call.
func (t *FormConfirmOtherTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.session.ConfirmOther(req.GetString("value", "")); err != nil {
		if errors.Is(err, form.ErrNoCapture) {
			return mcp.NewToolResultError("No custom value is pending. Call `form_set_field` with `other=true` first."), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(t.session.State())), nil
}

// ─── FormCancelOtherTool ────────────────────────────────────────────────────

// FormCancelOtherTool handles the form_cancel_other MCP tool.
type FormCancelOtherTool struct {
	session *session.Session
}

// NewFormCancelOtherTool creates a FormCancelOtherTool.
func NewFormCancelOtherTool(s *session.Session) *FormCancelOtherTool {
	return &FormCancelOtherTool{session: s}
}

// Definition returns the MCP tool definition for form_cancel_other.
func (t *FormCancelOtherTool) Definition() mcp.Tool {
	return mcp.NewTool("form_cancel_other",
		mcp.WithDescription("Abandon the pending custom value. The field keeps its previous value."),
	)
}

// Handle processes the form_cancel_other tool call.
func (t *FormCancelOtherTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.session.CancelOther()
	return mcp.NewToolResultText("Custom value cancelled."), nil
}

// ─── FormResetTool ──────────────────────────────────────────────────────────

// FormResetTool handles the form_reset MCP tool.
type FormResetTool struct {
	session *session.Session
}

// NewFormResetTool creates a FormResetTool.
func NewFormResetTool(s *session.Session) *FormResetTool {
	return &FormResetTool{session: s}
}

// Definition returns the MCP tool definition for form_reset.
func (t *FormResetTool) Definition() mcp.Tool {
	return mcp.NewTool("form_reset",
		mcp.WithDescription("Clear every form field and leave template edit mode. Saved templates are not touched."),
	)
}

// Handle processes the form_reset tool call.
func (t *FormResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.session.Reset()
	return mcp.NewToolResultText("Form cleared."), nil
}

// Package tools implements the MCP tool handlers of the prompt builder.
//
// Each tool is a struct holding the session it drives, with Definition()
// returning the mcp.Tool schema and Handle() processing the call. User
// mistakes (blank names, unknown ids, bad field names) come back as tool
// error results, never as Go errors.
package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/session"
	"github.com/HendryAvila/promptforge/internal/templates"
)

// idArg extracts a template id. JSON numbers arrive as float64; ids are
// millisecond timestamps and stay exact. Numeric strings are accepted too.
func idArg(req mcp.CallToolRequest, key string) (int64, bool) {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// formatState renders the session state as a markdown summary.
func formatState(st session.State) string {
	var b strings.Builder
	b.WriteString("# Project Form\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	for _, f := range form.Fields {
		v := st.Spec.Get(f)
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", f, v)
	}
	b.WriteString("\n")
	if st.Awaiting {
		fmt.Fprintf(&b, "**Awaiting custom value for:** `%s` (call `form_confirm_other` or `form_cancel_other`)\n", st.Pending)
	}
	if st.IsEditing {
		fmt.Fprintf(&b, "**Editing template:** %d (saving will update it)\n", st.EditingID)
	}
	fmt.Fprintf(&b, "**Active panel:** %s\n", st.Panel)
	return b.String()
}

func formatTemplate(t templates.Template) string {
	return fmt.Sprintf("**%s** (id `%d`, created %s)", t.Name, t.ID, t.CreatedAt)
}

func missingTemplate(id int64) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Template %d not found. Use `template_list` to see saved templates.", id))
}

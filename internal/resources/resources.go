// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (promptforge://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/session"
)

// Resource URIs.
const (
	FormURI       = "promptforge://form/current"
	TemplatesURI  = "promptforge://templates"
	NaturalURI    = "promptforge://prompt/natural"
	StructuredURI = "promptforge://prompt/structured"
)

// Handler serves read-only views of the session.
type Handler struct {
	session *session.Session
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

// FormResource returns the MCP resource definition for the current form.
func (h *Handler) FormResource() mcp.Resource {
	return mcp.NewResource(FormURI, "Current Project Form",
		mcp.WithResourceDescription("The project form record, pending custom-value capture and edit mode"),
		mcp.WithMIMEType("application/json"),
	)
}

// TemplatesResource returns the MCP resource definition for saved templates.
func (h *Handler) TemplatesResource() mcp.Resource {
	return mcp.NewResource(TemplatesURI, "Saved Templates",
		mcp.WithResourceDescription("Every saved template with id, name, data and createdAt"),
		mcp.WithMIMEType("application/json"),
	)
}

// NaturalResource returns the MCP resource definition for the markdown prompt.
func (h *Handler) NaturalResource() mcp.Resource {
	return mcp.NewResource(NaturalURI, "Project Prompt (markdown)",
		mcp.WithResourceDescription("The natural-language prompt rendered from the current form"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// StructuredResource returns the MCP resource definition for the JSON prompt.
func (h *Handler) StructuredResource() mcp.Resource {
	return mcp.NewResource(StructuredURI, "Project Prompt (structured)",
		mcp.WithResourceDescription("The structured prompt rendered from the current form"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleForm returns the session state as JSON.
func (h *Handler) HandleForm(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.session.State())
}

// HandleTemplates returns the template list as JSON.
func (h *Handler) HandleTemplates(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.session.Templates())
}

// HandleNatural returns the markdown prompt.
func (h *Handler) HandleNatural(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.render(req.Params.URI, export.FormatNatural, "text/markdown")
}

// HandleStructured returns the structured prompt.
func (h *Handler) HandleStructured(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.render(req.Params.URI, export.FormatStructured, "application/json")
}

func (h *Handler) render(uri string, f export.Format, mime string) ([]mcp.ResourceContents, error) {
	_, out, err := h.session.Render(string(f))
	if err != nil {
		return errorResource(uri, err.Error()), nil
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mime, Text: out},
	}, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}

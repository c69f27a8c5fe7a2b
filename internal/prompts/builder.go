// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// BuilderPrompt handles the prompt-builder MCP prompt. It walks the user
// through the form one field at a time.
type BuilderPrompt struct{}

// NewBuilderPrompt creates a BuilderPrompt.
func NewBuilderPrompt() *BuilderPrompt {
	return &BuilderPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *BuilderPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("prompt-builder",
		mcp.WithPromptDescription(
			"Build a project prompt step by step: pick a domain, language, framework "+
				"and scale, describe the product, then preview, save or export the result.",
		),
		mcp.WithArgument("idea",
			mcp.ArgumentDescription("One-line description of what you want to build (optional)"),
		),
		mcp.WithArgument("panel",
			mcp.ArgumentDescription("Preferred output: 'natural' (markdown) or 'structured' (JSON). Default: natural"),
		),
	)
}

// Handle processes the prompt-builder prompt request.
func (p *BuilderPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	idea := ""
	panel := "natural"
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["idea"]; ok {
			idea = strings.TrimSpace(v)
		}
		if v, ok := args["panel"]; ok && v == "structured" {
			panel = v
		}
	}

	ideaLine := "Ask me what I want to build before anything else."
	if idea != "" {
		ideaLine = fmt.Sprintf("My idea: %q. Use it to suggest values, but let me confirm each one.", idea)
	}

	return &mcp.GetPromptResult{
		Description: "Guided project prompt builder",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me build a project prompt with the promptforge tools.\n\n"+
						"%s\n\n"+
						"Steps:\n"+
						"1. Call `form_reset`, then `prompt_select_panel` with panel=%s\n"+
						"2. For projectDomain, language, projectType, projectScale, framework and packageManager, "+
						"call `form_options` and let me choose. Set each with `form_set_field`. "+
						"If none fits, use other=true and `form_confirm_other`\n"+
						"3. Offer configuration files with `form_toggle_config_file`\n"+
						"4. Ask for the product overview, target users and key features and set "+
						"featureDescription, targetUsers and keyFeatures\n"+
						"5. Show me `prompt_preview`\n"+
						"6. Offer `template_save`, `prompt_copy` or `prompt_download`\n\n"+
						"Remember: changing the domain clears language, framework and package manager, "+
						"and changing the language clears framework and package manager.",
					ideaLine, panel,
				)),
			},
		},
	}, nil
}

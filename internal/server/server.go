// Package server wires all components and creates the MCP server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources. No business logic
// lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/HendryAvila/promptforge/internal/config"
	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/metrics"
	"github.com/HendryAvila/promptforge/internal/prompts"
	"github.com/HendryAvila/promptforge/internal/resources"
	"github.com/HendryAvila/promptforge/internal/session"
	"github.com/HendryAvila/promptforge/internal/storage"
	"github.com/HendryAvila/promptforge/internal/templates"
	"github.com/HendryAvila/promptforge/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Core holds the shared dependencies both shells drive.
type Core struct {
	Session  *session.Session
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Options customizes NewCore. Zero values use the system defaults.
type Options struct {
	Clipboard export.Clipboard
}

// NewCore opens the template slot and builds the session.
//
// The returned cleanup closes the slot and must be called on shutdown
// (typically via defer). It is always non-nil.
func NewCore(cfg *config.Config, log *slog.Logger, opts Options) (*Core, func(), error) {
	if log == nil {
		log = slog.Default()
	}

	slot, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.DataDir)
	if err != nil {
		return nil, noop, fmt.Errorf("opening template storage: %w", err)
	}
	cleanup := func() {
		if err := slot.Close(); err != nil {
			log.Warn("closing template storage", "error", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store := templates.New(slot, cfg.Storage.Key, log.With("component", "templates"), m)
	exporter := export.NewExporter(opts.Clipboard, cfg.Export.DownloadDir, log.With("component", "export"), m)
	sess := session.New(store, exporter, log.With("component", "session"), m)

	log.Info("core ready",
		"backend", cfg.Storage.Backend,
		"data_dir", cfg.Storage.DataDir,
		"templates", len(store.List()),
	)

	return &Core{Session: sess, Registry: reg, Metrics: m, Logger: log}, cleanup, nil
}

// New creates the MCP server with every tool, prompt and resource
// registered against core.
func New(core *Core) *server.MCPServer {
	s := server.NewMCPServer(
		"promptforge",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	sess := core.Session

	// --- Form tools ---

	formGet := tools.NewFormGetTool(sess)
	s.AddTool(formGet.Definition(), formGet.Handle)

	formOptions := tools.NewFormOptionsTool(sess)
	s.AddTool(formOptions.Definition(), formOptions.Handle)

	setField := tools.NewFormSetFieldTool(sess)
	s.AddTool(setField.Definition(), setField.Handle)

	toggle := tools.NewFormToggleConfigFileTool(sess)
	s.AddTool(toggle.Definition(), toggle.Handle)

	confirmOther := tools.NewFormConfirmOtherTool(sess)
	s.AddTool(confirmOther.Definition(), confirmOther.Handle)

	cancelOther := tools.NewFormCancelOtherTool(sess)
	s.AddTool(cancelOther.Definition(), cancelOther.Handle)

	reset := tools.NewFormResetTool(sess)
	s.AddTool(reset.Definition(), reset.Handle)

	// --- Template tools ---

	list := tools.NewTemplateListTool(sess)
	s.AddTool(list.Definition(), list.Handle)

	save := tools.NewTemplateSaveTool(sess)
	s.AddTool(save.Definition(), save.Handle)

	load := tools.NewTemplateLoadTool(sess)
	s.AddTool(load.Definition(), load.Handle)

	edit := tools.NewTemplateEditTool(sess)
	s.AddTool(edit.Definition(), edit.Handle)

	cancelEdit := tools.NewTemplateCancelEditTool(sess)
	s.AddTool(cancelEdit.Definition(), cancelEdit.Handle)

	clone := tools.NewTemplateCloneTool(sess)
	s.AddTool(clone.Definition(), clone.Handle)

	del := tools.NewTemplateDeleteTool(sess)
	s.AddTool(del.Definition(), del.Handle)

	// --- Prompt tools ---

	preview := tools.NewPromptPreviewTool(sess)
	s.AddTool(preview.Definition(), preview.Handle)

	panel := tools.NewPromptSelectPanelTool(sess)
	s.AddTool(panel.Definition(), panel.Handle)

	copyTool := tools.NewPromptCopyTool(sess)
	s.AddTool(copyTool.Definition(), copyTool.Handle)

	download := tools.NewPromptDownloadTool(sess)
	s.AddTool(download.Definition(), download.Handle)

	// --- Prompts ---

	builder := prompts.NewBuilderPrompt()
	s.AddPrompt(builder.Definition(), builder.Handle)

	// --- Resources ---

	rh := resources.NewHandler(sess)
	s.AddResource(rh.FormResource(), rh.HandleForm)
	s.AddResource(rh.TemplatesResource(), rh.HandleTemplates)
	s.AddResource(rh.NaturalResource(), rh.HandleNatural)
	s.AddResource(rh.StructuredResource(), rh.HandleStructured)

	return s
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// serverInstructions tells the AI how to drive the form.
func serverInstructions() string {
	return `You have access to promptforge, a project prompt builder.

## What it does
promptforge keeps one project form (domain, language, project type, scale,
framework, package manager, configuration files, product overview, target
users, key features) and renders it as a ready-to-use project prompt, either
as a markdown document or as structured JSON.

## Form rules
- Changing projectDomain clears language, framework and packageManager.
- Changing language clears framework and packageManager.
- Use form_options to see valid values; framework and package manager lists
  depend on the language.
- For a value that is not listed, call form_set_field with other=true, then
  form_confirm_other with the text. projectDomain does not accept custom values.
- form_set_field on configFiles toggles the value; form_toggle_config_file
  does the same.

## Templates
- template_save stores the current form under a name (a name is required).
- template_edit loads a template and makes the next template_save update it.
- template_delete needs confirm=true. Ask the user before confirming.

## Output
- prompt_preview renders the active panel (prompt_select_panel switches
  between natural and structured).
- prompt_copy writes to the clipboard of the machine running the server;
  prompt_download writes prompt.md or prompt.json to the download directory.`
}

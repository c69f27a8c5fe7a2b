package server

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/promptforge/internal/config"
	"github.com/HendryAvila/promptforge/internal/logger"
)

type nopClipboard struct{}

func (nopClipboard) WriteAll(string) error { return nil }

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = backend
	cfg.Storage.DataDir = t.TempDir()
	cfg.Export.DownloadDir = t.TempDir()
	return cfg
}

func TestNewCore_Backends(t *testing.T) {
	for _, backend := range []string{"file", "sqlite", "memory"} {
		t.Run(backend, func(t *testing.T) {
			core, cleanup, err := NewCore(testConfig(t, backend), logger.Discard(), Options{Clipboard: nopClipboard{}})
			if err != nil {
				t.Fatalf("NewCore: %v", err)
			}
			defer cleanup()

			if core.Session == nil || core.Registry == nil || core.Metrics == nil {
				t.Fatal("core dependencies should be set")
			}
			if _, err := core.Session.SaveTemplate("x"); err != nil {
				t.Fatalf("SaveTemplate: %v", err)
			}
		})
	}
}

func TestNewCore_TemplatesSurviveRestart(t *testing.T) {
	cfg := testConfig(t, "sqlite")

	core, cleanup, err := NewCore(cfg, logger.Discard(), Options{Clipboard: nopClipboard{}})
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	if err := core.Session.SetField("projectDomain", "Backend"); err != nil {
		t.Fatal(err)
	}
	if _, err := core.Session.SaveTemplate("persisted"); err != nil {
		t.Fatal(err)
	}
	cleanup()

	core, cleanup, err = NewCore(cfg, logger.Discard(), Options{Clipboard: nopClipboard{}})
	if err != nil {
		t.Fatalf("NewCore (reopen): %v", err)
	}
	defer cleanup()

	list := core.Session.Templates()
	if len(list) != 1 || list[0].Name != "persisted" || list[0].Data.ProjectDomain != "Backend" {
		t.Errorf("unexpected templates after restart: %+v", list)
	}
}

func TestNewCore_BadBackend(t *testing.T) {
	_, cleanup, err := NewCore(testConfig(t, "etcd"), logger.Discard(), Options{})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cleanup()
}

func TestNew_RegistersTools(t *testing.T) {
	core, cleanup, err := NewCore(testConfig(t, "memory"), logger.Discard(), Options{Clipboard: nopClipboard{}})
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	defer cleanup()

	s := New(core)
	registered := s.ListTools()
	for _, name := range []string{
		"form_get", "form_options", "form_set_field", "form_toggle_config_file",
		"form_confirm_other", "form_cancel_other", "form_reset",
		"template_list", "template_save", "template_load", "template_edit",
		"template_cancel_edit", "template_clone", "template_delete",
		"prompt_preview", "prompt_select_panel", "prompt_copy", "prompt_download",
	} {
		if _, ok := registered[name]; !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestNew_HandlesToolCall(t *testing.T) {
	core, cleanup, err := NewCore(testConfig(t, "memory"), logger.Discard(), Options{Clipboard: nopClipboard{}})
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	defer cleanup()

	tool, ok := New(core).ListTools()["form_set_field"]
	if !ok || tool == nil {
		t.Fatal("form_set_field not registered")
	}
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"field": "language", "value": "Go"}
	result, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error")
	}
	if got := core.Session.Spec().Language; got != "Go" {
		t.Errorf("Language = %s, want Go", got)
	}
}

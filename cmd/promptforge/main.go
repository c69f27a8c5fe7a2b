// promptforge: project prompt builder.
//
// Keeps a project form (domain, language, framework, scale, ...) and turns
// it into a ready-to-use prompt for AI coding tools, as a markdown document
// or as structured JSON. Named form snapshots are saved as templates.
//
// Usage:
//
//	promptforge serve       # MCP server (stdio transport)
//	promptforge http        # REST API on --addr
//	promptforge render      # print the prompt for a saved template
//	promptforge templates   # list saved templates
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/promptforge/internal/config"
	"github.com/HendryAvila/promptforge/internal/logger"
	pfserver "github.com/HendryAvila/promptforge/internal/server"
)

const appName = "promptforge"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Project prompt builder",
		Long: `promptforge turns a short project form into a ready-to-use prompt for
AI coding tools.

It provides:
- an MCP server exposing the form, templates and prompt as tools
- a REST API with the same operations
- offline rendering of saved templates`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(g),
		httpCmd(g),
		renderCmd(g),
		templatesCmd(g),
		configCmd(g),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, pfserver.Version)
		},
	}
}

// setup loads the configuration and installs the default logger. The
// --log-level flag wins over every config layer.
func (g *globals) setup() (*config.Config, *slog.Logger, error) {
	boot := logger.Init(logger.DefaultConfig())

	cfg, err := config.NewLoader(boot).Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	lvl, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	lc := logger.DefaultConfig()
	lc.Level = lvl
	lc.Format = cfg.Log.Format
	return cfg, logger.Init(lc), nil
}

// openCore loads config and builds the shared core. The returned cleanup
// is always non-nil.
func (g *globals) openCore() (*pfserver.Core, *config.Config, func(), error) {
	cfg, log, err := g.setup()
	if err != nil {
		return nil, nil, func() {}, err
	}
	core, cleanup, err := pfserver.NewCore(cfg, log, pfserver.Options{})
	if err != nil {
		return nil, nil, cleanup, err
	}
	return core, cfg, cleanup, nil
}

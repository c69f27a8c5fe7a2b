package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/promptforge/internal/logger"
	pfserver "github.com/HendryAvila/promptforge/internal/server"
)

func serveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout. Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "promptforge": {
        "command": "promptforge",
        "args": ["serve"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _, cleanup, err := g.openCore()
			defer cleanup()
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			logger.ForComponent("mcp").Info("serving on stdio", "version", pfserver.Version)
			// Logs go to stderr; stdout belongs to the transport.
			return server.ServeStdio(pfserver.New(core))
		},
	}
}

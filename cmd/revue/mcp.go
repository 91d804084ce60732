package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/panbanda/revue/internal/logging"
	"github.com/panbanda/revue/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes revue's Java
review as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "revue": {
        "command": "revue",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_java      Method metrics, code smells and available quick fixes
  - apply_quick_fix   Apply a fix to an analyzed document
  - undo_quick_fix    Revert the last applied fix
  - redo_quick_fix    Re-apply the last reverted fix`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry server.json manifest",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	server := mcpserver.NewServer(version,
		mcpserver.WithAnalyzer(e.sharedAnalyzer()),
		mcpserver.WithLogger(logging.Component(e.logger, "mcp")),
	)
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}

// runMCPManifest prints the manifest of a server built from the loaded
// config, so the advertised thresholds match what `revue mcp` would use.
func runMCPManifest(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	server := mcpserver.NewServer(version, mcpserver.WithAnalyzer(e.sharedAnalyzer()))
	defer server.Close()
	data, err := server.ManifestJSON(version)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(append(data, '\n'))
	return err
}

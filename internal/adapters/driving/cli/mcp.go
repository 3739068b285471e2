package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pagelens/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve pagelens to AI assistants",
	Long:  `Expose screenshot analysis to assistants through the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server backed by the local settings, prompts and API key.

The server speaks JSON-RPC over stdio unless --port is given, in which case it
serves the streamable HTTP transport (useful with MCP Inspector). Prompt files
are watched while the server runs, so edits apply to the next analysis.

Tools:
  analyze_screenshots  analyse screenshot files by path
  analyze_images       analyse base64-encoded screenshots

Resources:
  pagelens://settings           current settings, API key masked
  pagelens://analyses           analyses run by this server, newest first
  pagelens://analyses/{id}      one analysis in full

Claude Desktop (claude_desktop_config.json):
  {
    "mcpServers": {
      "pagelens": {
        "command": "/path/to/pagelens",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Analysis: analysisService,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if watcher, ok := promptSource.(PromptWatcher); ok {
		go func() {
			if err := watcher.Watch(cmd.Context()); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

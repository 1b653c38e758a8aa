package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragserve/internal/adapters/driving/api"
	"github.com/custodia-labs/ragserve/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ragserve/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with any MCP-compatible assistant. Tools:
  upload_document  index a document under --root for a user
  ask              answer a question from the user's document
  health           report whether the language model is loaded

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

The HTTP server binds to 127.0.0.1 unless --host is given. upload_document
only reads files under --root (default: the configured root_dir).

Examples:
  # Stdio mode (default)
  ragserve mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ragserve mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ragserve": {
        "command": "/path/to/ragserve",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", api.DefaultHost, "HTTP interface to bind")
	mcpServeCmd.Flags().String("root", "", "directory upload_document may read from (default: root_dir)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}
	docRoot, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("getting root flag: %w", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if docRoot == "" {
		docRoot = settings.RootDir
	}

	engine, err := newEngine(settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Warn("Closing pipeline: %v", cerr)
		}
	}()
	engine.Start(cmd.Context())

	ports := &mcp.Ports{
		Chat:         engine.Chat(),
		Settings:     settingsService,
		DocumentRoot: docRoot,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

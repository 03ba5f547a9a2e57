package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nomina/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can browse
extracted names and processing progress. The server is read-only and never
calls the LLM.

By default, the server communicates over stdio using JSON-RPC.

Use --http to serve streamable HTTP instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  nomina mcp

  # HTTP mode
  nomina mcp --http :8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

// mcpHTTPAddr is the --http flag; empty means stdio.
var mcpHTTPAddr string

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Names:  nameService,
		Corpus: corpusService,
		Budget: budgetService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}

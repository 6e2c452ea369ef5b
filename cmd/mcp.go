package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuetrace/internal/mcp"
)

// mcpCmd serves the queue metrics over the Model Context Protocol on stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the queuetrace MCP server",
	Long: `Serve the queue metrics over the Model Context Protocol on stdio.

Exposed tools: queue_backlog, queue_throughput, queue_arrivals,
queue_wait and queue_reconstruct. The event source and defaults come
from the regular configuration; callers can override freq, as-of and
the reconstruction anchor per call.

Nothing is printed outside the protocol, so the command can be wired
directly into an MCP client.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

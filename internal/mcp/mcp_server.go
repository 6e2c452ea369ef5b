// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/queuetrace/internal/contract"
)

// NewMCPServer initializes and configures the Queuetrace MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Queuetrace Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: queue_backlog ---
	s.AddTool(mcp.NewTool("queue_backlog",
		mcp.WithDescription("Estimate queue backlog over time from inflow and outflow event logs (cumulative inflow minus cumulative outflow)."),
		mcp.WithString("freq", mcp.Description("Output frequency (d, w, m, q, a). Defaults to the configured frequency."), mcp.Enum("d", "w", "m", "q", "a")),
		mcp.WithString("as_of", mcp.Description("Evaluation date (YYYY-MM-DD). Defaults to today.")),
	), h.handleBacklog)

	// --- 2. Tool: queue_throughput ---
	s.AddTool(mcp.NewTool("queue_throughput",
		mcp.WithDescription("Compute total outflow (completed units) per period from the outflow event log."),
		mcp.WithString("freq", mcp.Description("Output frequency (d, w, m, q, a)."), mcp.Enum("d", "w", "m", "q", "a")),
		mcp.WithString("as_of", mcp.Description("Evaluation date (YYYY-MM-DD).")),
	), h.handleThroughput)

	// --- 3. Tool: queue_arrivals ---
	s.AddTool(mcp.NewTool("queue_arrivals",
		mcp.WithDescription("Compute total inflow (arriving units) per period from the inflow event log."),
		mcp.WithString("freq", mcp.Description("Output frequency (d, w, m, q, a)."), mcp.Enum("d", "w", "m", "q", "a")),
		mcp.WithString("as_of", mcp.Description("Evaluation date (YYYY-MM-DD).")),
	), h.handleArrivals)

	// --- 4. Tool: queue_wait ---
	s.AddTool(mcp.NewTool("queue_wait",
		mcp.WithDescription("Estimate average time-in-queue per period via Little's Law (backlog over arrival rate)."),
		mcp.WithString("freq", mcp.Description("Output frequency (d, w, m, q, a)."), mcp.Enum("d", "w", "m", "q", "a")),
		mcp.WithString("as_of", mcp.Description("Evaluation date (YYYY-MM-DD).")),
	), h.handleWait)

	// --- 5. Tool: queue_reconstruct ---
	s.AddTool(mcp.NewTool("queue_reconstruct",
		mcp.WithDescription("Reconstruct the historical backlog series by working backwards from a known backlog level."),
		mcp.WithNumber("backlog", mcp.Description("Known backlog level at the anchor date. Falls back to the anchor store when omitted.")),
		mcp.WithString("anchor_date", mcp.Description("Date of the known backlog level (YYYY-MM-DD). Defaults to the evaluation date.")),
		mcp.WithString("freq", mcp.Description("Output frequency (d, w, m, q, a)."), mcp.Enum("d", "w", "m", "q", "a")),
		mcp.WithString("as_of", mcp.Description("Evaluation date (YYYY-MM-DD).")),
	), h.handleReconstruct)

	return s
}

// StartMCPServer starts the Queuetrace MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

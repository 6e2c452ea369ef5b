package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/queuetrace/core"
	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/internal/eventsrc"
	"github.com/huangsam/queuetrace/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// applyCommonArgs clones the base config and applies the freq and as_of
// arguments shared by all tools.
func (h *toolHandler) applyCommonArgs(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()

	if f := request.GetString("freq", ""); f != "" {
		freq, err := schema.ParseFrequency(f)
		if err != nil {
			return nil, err
		}
		cfg.Freq = freq
	}
	if a := request.GetString("as_of", ""); a != "" {
		asOf, err := timegrid.ParseDate(a)
		if err != nil {
			return nil, fmt.Errorf("invalid as_of value: %w", err)
		}
		cfg.AsOf = asOf
	}

	return cfg, nil
}

// newSource builds the event source for one tool call.
func (h *toolHandler) newSource(cfg *contract.Config) (contract.EventSource, error) {
	return eventsrc.NewEventSource(cfg)
}

type seriesGetter func(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.SeriesReport, error)

// handleSeries runs one of the series-producing metrics and renders JSON.
func (h *toolHandler) handleSeries(ctx context.Context, request mcp.CallToolRequest, get seriesGetter) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommonArgs(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	src, err := h.newSource(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("event source failed: %v", err)), nil
	}

	report, err := get(ctx, cfg, src, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("computation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBacklog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleSeries(ctx, request, core.GetBacklogResult)
}

func (h *toolHandler) handleThroughput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleSeries(ctx, request, core.GetThroughputResult)
}

func (h *toolHandler) handleArrivals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleSeries(ctx, request, core.GetArrivalsResult)
}

func (h *toolHandler) handleWait(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.handleSeries(ctx, request, core.GetWaitResult)
}

func (h *toolHandler) handleReconstruct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommonArgs(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	// Key presence decides whether an anchor was supplied: a backlog of 0 is
	// a valid anchor for a queue trued up to empty.
	if _, ok := request.GetArguments()["backlog"]; ok {
		cfg.AnchorBacklog = request.GetFloat("backlog", 0)
		cfg.AnchorSet = true
		cfg.AnchorDate = cfg.AsOf
	}
	if d := request.GetString("anchor_date", ""); d != "" {
		anchorDate, err := timegrid.ParseDate(d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid anchor_date value: %v", err)), nil
		}
		cfg.AnchorDate = anchorDate
		cfg.AnchorSet = true
	}

	src, err := h.newSource(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("event source failed: %v", err)), nil
	}

	report, err := core.GetReconstructResult(ctx, cfg, src, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reconstruction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/internal/outwriter"
	"github.com/huangsam/queuetrace/schema"
)

// ExecutorFunc defines the function signature for executing different metric modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error

// GetBacklogResult computes the unanchored backlog estimate: cumulative
// inflow minus cumulative outflow, clipped to the observed span.
func GetBacklogResult(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.SeriesReport, error) {
	finishRun := beginRun(mgr, schema.BacklogMetric, cfg)

	inflows, outflows, err := loadFlows(ctx, cfg, src)
	if err != nil {
		return schema.SeriesReport{}, err
	}
	result := FlowBalance(inflows, outflows, cfg.Freq, cfg.AsOf)

	finishRun(result.Len())
	return buildSeriesReport(schema.BacklogMetric, cfg, result), nil
}

// GetThroughputResult computes total outflow per period.
func GetThroughputResult(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.SeriesReport, error) {
	finishRun := beginRun(mgr, schema.ThroughputMetric, cfg)

	events, err := src.Outflows(ctx)
	if err != nil {
		return schema.SeriesReport{}, fmt.Errorf("failed to load outflow events: %w", err)
	}
	outflows := ExtractFlow(events, cfg.Weighted(), schema.DayFreq, cfg.AsOf)
	result := Throughput(outflows, cfg.Freq, cfg.AsOf)

	finishRun(result.Len())
	return buildSeriesReport(schema.ThroughputMetric, cfg, result), nil
}

// GetArrivalsResult computes total inflow per period.
func GetArrivalsResult(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.SeriesReport, error) {
	finishRun := beginRun(mgr, schema.ArrivalsMetric, cfg)

	events, err := src.Inflows(ctx)
	if err != nil {
		return schema.SeriesReport{}, fmt.Errorf("failed to load inflow events: %w", err)
	}
	inflows := ExtractFlow(events, cfg.Weighted(), schema.DayFreq, cfg.AsOf)
	result := Arrivals(inflows, cfg.Freq, cfg.AsOf)

	finishRun(result.Len())
	return buildSeriesReport(schema.ArrivalsMetric, cfg, result), nil
}

// GetWaitResult computes average time-in-queue per period via Little's Law.
func GetWaitResult(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.SeriesReport, error) {
	finishRun := beginRun(mgr, schema.WaitMetric, cfg)

	inflows, outflows, err := loadFlows(ctx, cfg, src)
	if err != nil {
		return schema.SeriesReport{}, err
	}
	result := Wait(inflows, outflows, cfg.Freq, cfg.AsOf)

	finishRun(result.Len())
	return buildSeriesReport(schema.WaitMetric, cfg, result), nil
}

// GetReconstructResult runs the anchored backlog reconstruction. The anchor
// comes from the command line when supplied, otherwise from the most recent
// stored anchor at or before the evaluation time.
func GetReconstructResult(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) (schema.QueueReport, error) {
	anchor, err := resolveAnchor(cfg, mgr)
	if err != nil {
		return schema.QueueReport{}, err
	}

	finishRun := beginRun(mgr, schema.ReconstructMetric, cfg)

	inflowEvents, err := src.Inflows(ctx)
	if err != nil {
		return schema.QueueReport{}, fmt.Errorf("failed to load inflow events: %w", err)
	}
	outflowEvents, err := src.Outflows(ctx)
	if err != nil {
		return schema.QueueReport{}, fmt.Errorf("failed to load outflow events: %w", err)
	}

	inflows, outflows, backlog := Queues(
		inflowEvents, outflowEvents,
		anchor,
		cfg.TimeIndex(),
		cfg.Weighted(),
		cfg.Freq,
		cfg.AsOf,
	)

	finishRun(backlog.Len())

	return schema.QueueReport{
		Frequency: cfg.Freq,
		AsOf:      cfg.AsOf,
		Anchor:    anchor,
		Inflows:   inflows.ToPoints(),
		Outflows:  outflows.ToPoints(),
		Backlog:   backlog.ToPoints(),
	}, nil
}

// ExecuteBacklog computes the unanchored backlog estimate and prints it.
// It serves as the main entry point for the 'backlog' mode.
func ExecuteBacklog(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetBacklogResult(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSeriesReport(report, cfg, time.Since(start))
}

// ExecuteThroughput computes total outflow per period and prints it.
// It serves as the main entry point for the 'throughput' mode.
func ExecuteThroughput(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetThroughputResult(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSeriesReport(report, cfg, time.Since(start))
}

// ExecuteArrivals computes total inflow per period and prints it.
// It serves as the main entry point for the 'arrivals' mode.
func ExecuteArrivals(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetArrivalsResult(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSeriesReport(report, cfg, time.Since(start))
}

// ExecuteWait computes average time-in-queue per period and prints it.
// It serves as the main entry point for the 'wait' mode.
func ExecuteWait(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetWaitResult(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSeriesReport(report, cfg, time.Since(start))
}

// ExecuteReconstruct runs the anchored reconstruction and prints the full
// report with aligned inflow, outflow, and backlog series.
// It serves as the main entry point for the 'reconstruct' mode.
func ExecuteReconstruct(ctx context.Context, cfg *contract.Config, src contract.EventSource, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetReconstructResult(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintQueueReport(report, cfg, time.Since(start))
}

// loadFlows loads both event directions and extracts daily flow series.
func loadFlows(ctx context.Context, cfg *contract.Config, src contract.EventSource) (series.Series, series.Series, error) {
	inflowEvents, err := src.Inflows(ctx)
	if err != nil {
		return series.Series{}, series.Series{}, fmt.Errorf("failed to load inflow events: %w", err)
	}
	outflowEvents, err := src.Outflows(ctx)
	if err != nil {
		return series.Series{}, series.Series{}, fmt.Errorf("failed to load outflow events: %w", err)
	}

	inflows := ExtractFlow(inflowEvents, cfg.Weighted(), schema.DayFreq, cfg.AsOf)
	outflows := ExtractFlow(outflowEvents, cfg.Weighted(), schema.DayFreq, cfg.AsOf)
	return inflows, outflows, nil
}

// resolveAnchor picks the reconstruction anchor: an explicit command-line
// value wins, then the anchor store.
func resolveAnchor(cfg *contract.Config, mgr contract.StoreManager) (schema.Anchor, error) {
	if cfg.HasExplicitAnchor() {
		return schema.Anchor{Date: cfg.AnchorDate, Backlog: cfg.AnchorBacklog, Note: cfg.AnchorNote}, nil
	}

	if mgr != nil {
		if store := mgr.GetAnchorStore(); store != nil {
			anchor, err := store.LatestAnchor(cfg.AsOf)
			if err == nil {
				return anchor, nil
			}
			contract.LogWarn("anchor lookup", err)
		}
	}

	return schema.Anchor{}, fmt.Errorf("no anchor available: supply --backlog (with optional --anchor-date) or store one with 'anchors add'")
}

// buildSeriesReport wraps a computed series into its report envelope.
func buildSeriesReport(metric schema.MetricKind, cfg *contract.Config, s series.Series) schema.SeriesReport {
	return schema.SeriesReport{
		Metric:    metric,
		Frequency: cfg.Freq,
		AsOf:      cfg.AsOf,
		Points:    s.ToPoints(),
	}
}

// beginRun opens a run record in the configured store and returns the
// closure that finishes it. A missing store makes both steps no-ops.
func beginRun(mgr contract.StoreManager, metric schema.MetricKind, cfg *contract.Config) func(points int) {
	if mgr == nil {
		return func(int) {}
	}
	store := mgr.GetAnchorStore()
	if store == nil {
		return func(int) {}
	}

	params := map[string]any{
		"freq":     string(cfg.Freq),
		"as_of":    cfg.AsOf.Format(time.RFC3339),
		"weighted": cfg.Weighted(),
	}
	runID, err := store.BeginRun(time.Now(), metric, cfg.Freq, params)
	if err != nil {
		contract.LogWarn("run tracking", err)
		return func(int) {}
	}

	return func(points int) {
		if err := store.EndRun(runID, time.Now(), points); err != nil {
			contract.LogWarn("run tracking", err)
		}
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuetrace/core"
)

// backlogCmd estimates queue backlog over time without an anchor.
var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Estimate queue backlog over time from event logs.",
	Long: `Estimate the backlog level per period as cumulative inflow minus
cumulative outflow, clipped to the span where events were observed.

This estimate assumes the queue started empty at the first observed event.
When you know the actual backlog level at some date, use 'reconstruct'
instead to anchor the series on that observation.

Examples:
  # Weekly backlog estimate from CSV event logs
  queuetrace backlog --inflow-csv opened.csv --outflow-csv closed.csv --freq w

  # Monthly backlog from SQL tables, weighted by story points
  queuetrace backlog --source-backend postgresql --source-db-connect "host=localhost dbname=tickets" \
    --inflow-table opened --outflow-table closed --weight-column points --freq m`,
	PreRunE: sharedSetupWrapper,
	Run:     runMetric(core.ExecuteBacklog, "Cannot compute backlog"),
}

// throughputCmd computes total outflow per period.
var throughputCmd = &cobra.Command{
	Use:   "throughput",
	Short: "Compute total outflow (completed units) per period.",
	Long: `Compute how many units left the queue in each period.

Periods inside the observed span with no outflow report 0 rather than
being absent, so the series is safe to chart or join directly.

Examples:
  # Weekly completions
  queuetrace throughput --outflow-csv closed.csv --freq w

  # Monthly completions weighted by effort
  queuetrace throughput --outflow-csv closed.csv --weight-column points --freq m`,
	PreRunE: sharedSetupWrapper,
	Run:     runMetric(core.ExecuteThroughput, "Cannot compute throughput"),
}

// arrivalsCmd computes total inflow per period.
var arrivalsCmd = &cobra.Command{
	Use:   "arrivals",
	Short: "Compute total inflow (arriving units) per period.",
	Long: `Compute how many units entered the queue in each period.

Periods inside the observed span with no inflow report 0 rather than
being absent, so the series is safe to chart or join directly.

Examples:
  # Weekly arrivals
  queuetrace arrivals --inflow-csv opened.csv --freq w`,
	PreRunE: sharedSetupWrapper,
	Run:     runMetric(core.ExecuteArrivals, "Cannot compute arrivals"),
}

// waitCmd estimates average time-in-queue per period.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Estimate average time-in-queue per period via Little's Law.",
	Long: `Estimate how long a unit spends in the queue per period, computed as
backlog divided by arrival rate (Little's Law: W = L / lambda).

Periods with zero arrivals have no defined wait time and are omitted
from the output.

Examples:
  # Monthly average wait
  queuetrace wait --inflow-csv opened.csv --outflow-csv closed.csv --freq m`,
	PreRunE: sharedSetupWrapper,
	Run:     runMetric(core.ExecuteWait, "Cannot compute wait"),
}

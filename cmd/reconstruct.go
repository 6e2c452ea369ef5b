package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/queuetrace/core"
)

// reconstructCmd runs the anchored backlog reconstruction.
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct historical backlog from a known backlog level.",
	Long: `Reconstruct the historical backlog series by working backwards from a
known backlog level at a known date (the anchor).

For each earlier period the anchor level is adjusted by the inflows and
outflows between that period and the anchor date. This recovers backlog
history for queues that never recorded periodic snapshots. Reconstructed
values are clamped at zero since a physical backlog cannot be negative.

The anchor comes from --backlog (with optional --anchor-date), or from
the most recent stored anchor at or before --as-of when the flag is
omitted. Store anchors with 'queuetrace anchors add'.

Examples:
  # Reconstruct weekly backlog from today's known level of 120 items
  queuetrace reconstruct --inflow-csv opened.csv --outflow-csv closed.csv --backlog 120 --freq w

  # Anchor on a historical audit instead of today
  queuetrace reconstruct --inflow-csv opened.csv --outflow-csv closed.csv \
    --backlog 85 --anchor-date 2026-03-01 --freq m

  # Use the latest stored anchor
  queuetrace reconstruct --inflow-csv opened.csv --outflow-csv closed.csv --freq m`,
	PreRunE: sharedSetupWrapper,
	Run:     runMetric(core.ExecuteReconstruct, "Cannot reconstruct backlog"),
}

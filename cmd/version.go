package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd reports build provenance for install checks and bug reports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print queuetrace version and build information.",
	Long: `Report the release version together with the commit, build date and
Go toolchain the binary was produced with. Include this output when
filing bug reports.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("queuetrace %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  commit: %s\n", commit)
		cmd.Printf("  built:  %s with %s\n", date, runtime.Version())
	},
}

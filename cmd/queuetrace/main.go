// main is the entry point for the queuetrace CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/queuetrace/cmd"
	"github.com/huangsam/queuetrace/internal/anchordb"
	"github.com/huangsam/queuetrace/internal/contract"
)

func main() {
	cmd.SetStoreManager(anchordb.Manager)
	defer anchordb.CloseStore()

	err := cmd.Execute()

	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}

	if err != nil {
		// rootCmd silences Cobra's own error printing, so report here.
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

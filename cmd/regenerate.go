package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/transportmodeling/popsynth/internal/synth"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate-worker-categories",
	Short: "Rebuild the worker-category tables from an already-synthesized HouseholdData directory",
	Long: `regenerate-worker-categories bypasses sampling: it reads the household and
person files a previous synthesize run already wrote to output-directory
and reruns only the aggregator, resolving each household's planning
district from its zone via the zone system.`,
	RunE: runRegenerate,
}

func init() {
	registerCommonFlags(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	sc, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := synth.RegenerateWorkerCategories(sc); err != nil {
		return err
	}
	fmt.Printf("worker categories regenerated in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

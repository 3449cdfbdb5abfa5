package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// harvestCommand creates the harvest command.
func (c *CLI) harvestCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Load the registry snapshot, fetching it when no cached copy exists",
		Long: `Harvest loads the raw re3data documents from the configured cache. On a
cold cache (or with --refresh) it fetches the repository index and every
detail document, stores them, and builds the repository table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHarvest(cmd.Context(), &flags)
		},
	}

	addRunFlags(cmd, &flags)
	return cmd
}

func (c *CLI) runHarvest(ctx context.Context, flags *runFlags) error {
	prog := newProgress(loggerFromContext(ctx))
	result, err := c.run(ctx, flags)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Harvested %d documents", result.Stats.Documents))

	printSuccess("Registry snapshot ready")
	printStats(result.Stats, result.CacheHit)
	printKeyValue("Run", result.RunID.String())
	printKeyValue("Duration", result.Stats.Total().String())
	printDiagnostics(result.Diagnostics, maxDiagnostics)
	printNewline()
	printNextStep("Browse subjects", appName+" subjects tree --format markdown")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/gist-crawler/pkg/gistcrawler"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove mirrors of sources no longer in the job list",
	Long: `Drops state records for sources that are no longer listed and deletes
their mirror directories. A directory shared with a listed source is kept.
Crawling never removes anything on its own; this is the only way mirrors
are reclaimed. Use --dry-run to see what would be removed without acting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.Prune(gistcrawler.PruneOptions{DryRun: pruneDryRun})
		if err != nil {
			return err
		}

		if pruneDryRun {
			info("Dry run — nothing removed.")
		}

		if len(result.Removed) == 0 && len(result.Errors) == 0 {
			info("Nothing to prune.")
			return nil
		}

		for _, p := range result.Removed {
			if p.Path != "" {
				info("  remove  %s  (%s)", p.Source, p.Path)
			} else {
				info("  forget  %s", p.Source)
			}
		}
		info("\nPruned %d source(s).", len(result.Removed))

		if len(result.Errors) > 0 {
			for _, e := range result.Errors {
				errorf("%s: %s", e.Source, e.Err)
			}
			return fmt.Errorf("%d error(s) during prune", len(result.Errors))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "show what would be removed without acting")
	rootCmd.AddCommand(pruneCmd)
}

package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Mirror every listed repository and refresh stale digests",
	Long: `Processes the job list in order. Each repository is cloned or
fast-forwarded into <data_dir>/<owner>_<name>/code and its digest is
regenerated when the mirror changed or no valid digest exists. A failing
source never stops the run; only an unreadable job list exits non-zero.

Interrupting the run stops after the current source; progress already
recorded is kept.`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Crawl(ctx)
	if err != nil {
		return err
	}

	if !quiet {
		printSummary(cmd.OutOrStdout(), result)
	}

	if ctx.Err() != nil {
		return errors.New("crawl interrupted")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

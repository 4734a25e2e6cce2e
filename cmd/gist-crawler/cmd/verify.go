package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [source...]",
	Short: "Check that recorded mirrors and digests are intact on disk",
	Long: `For each source recorded as mirrored, checks that the working copy still
has git metadata, that its HEAD matches the recorded revision and that the
recorded digest exists and is non-empty. Nothing is fetched or modified.
Exit 0 if everything is intact; non-zero otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		result := client.Verify(cmd.Context(), args)

		for _, ref := range result.Intact {
			detail("%s %s", color.GreenString("✓"), ref)
		}
		for _, e := range result.Broken {
			info("  %s %s: %s", color.RedString("✗"), e.Source, e.Err)
		}

		if len(result.Broken) > 0 {
			return fmt.Errorf("%d source(s) need a fresh crawl", len(result.Broken))
		}

		info("All %d recorded source(s) intact.", len(result.Intact))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

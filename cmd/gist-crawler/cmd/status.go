package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bianoble/gist-crawler/pkg/gistcrawler"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded state of every source",
	Long: `Lists every source in the job list, followed by sources still tracked in
the state file but no longer listed. Reads local state only; nothing is
fetched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		statuses, err := client.Status()
		if err != nil {
			return err
		}

		if len(statuses) == 0 {
			info("No sources listed or tracked.")
			return nil
		}

		renderStatus(cmd.OutOrStdout(), statuses)
		return nil
	},
}

func renderStatus(w io.Writer, statuses []gistcrawler.SourceStatus) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"SOURCE", "STATE", "REVISION", "DIGEST", "LAST CRAWLED"})
	for _, s := range statuses {
		rev := s.Record.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		size := ""
		if s.Record.GistSuccess && s.Record.GistBytes > 0 {
			size = humanize.Bytes(uint64(s.Record.GistBytes))
		}
		crawled := ""
		if !s.Record.LastCrawled.IsZero() {
			crawled = humanize.Time(s.Record.LastCrawled)
		}
		tbl.AppendRow(table.Row{s.Source, colorState(s.State), rev, size, crawled})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d source(s)", len(statuses))})
	tbl.Render()
}

func colorState(state string) string {
	switch state {
	case gistcrawler.StatusComplete:
		return color.GreenString(state)
	case gistcrawler.StatusFailed:
		return color.RedString(state)
	case gistcrawler.StatusDigestPending, gistcrawler.StatusPending:
		return color.YellowString(state)
	default:
		return color.New(color.Faint).Sprint(state)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

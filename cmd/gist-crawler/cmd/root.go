package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	noInherit  bool
	verbose    bool
	quiet      bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "gist-crawler",
	Short: "Mirror git repositories and keep a text digest of each",
	Long: `gist-crawler reads a job list of repository references, keeps a local
git mirror of each one and regenerates its text digest only when the mirror
changed or no valid digest exists. Progress is recorded after every source,
so an interrupted run resumes where it stopped.

Run without a subcommand to crawl.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	RunE: runCrawl,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gist-crawler %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
		fmt.Fprintf(out, "  state:   v1\n")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "gist-crawler.yaml", "path to project config file")
	pf.BoolVar(&noInherit, "no-inherit", false, "ignore system and user config files")
	pf.String("jobs", "", "path to the job list (default crawl-jobs.txt)")
	pf.String("data-dir", "", "mirror root directory (default data)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")
	pf.BoolVar(&verbose, "verbose", false, "detailed output and debug logging")
	pf.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return err
	}
	return nil
}

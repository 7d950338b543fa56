package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/logger"
)

var (
	configFile string
	jsonLogs   bool
	verbosity  int

	// cfg is loaded once per invocation in PersistentPreRunE.
	cfg = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "cc-jobparse",
	Short: "Windows Task Scheduler job decoder",
	Long: `cc-jobparse decodes Windows Task Scheduler job definitions into one
unified descriptor.

It reads both formats:
  .job   - the legacy binary format written by Windows XP / Server 2003
  .xml   - Task Scheduler 2.0 task definitions (UTF-8 or UTF-16)

The format is detected from the file content, not its name.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "initializing logger")
		}
		loaded, path, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		if path != "" {
			logger.Infow("loaded config", "path", path)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and any hints attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if hint := diag.Hint(err); hint != "" {
		fmt.Fprintln(w, "Hint:", hint)
	}
}

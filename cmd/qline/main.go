package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qline/internal/app"
)

var opts app.Options

var rootCmd = &cobra.Command{
	Use:   "qline",
	Short: "qline - interactive command line with tab completion",
	Long: `qline reads command lines in the terminal and completes words with Tab.

Completion sources are configured in config.toml under [completion].
Accepted lines are echoed back; ctrl+d on an empty line exits.

Examples:
  qline                  # start the line reader
  qline --once           # read one line and print it to stdout
  qline --prompt '$ '    # use a different prompt`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("config-home"); dir != "" {
			if err := os.Setenv("QLINE_CONFIG_HOME", dir); err != nil {
				return err
			}
		}
		return app.New(opts).Run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().BoolVar(&opts.Debug, "debug", false, "Write debug messages to the log file")
	rootCmd.Flags().String("config-home", "", "Directory holding config.toml and themes")
	rootCmd.Flags().StringVar(&opts.Prompt, "prompt", "", "Prompt shown before the input line")
	rootCmd.Flags().BoolVar(&opts.Once, "once", false, "Read one line, print it and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "qline:", err)
		os.Exit(1)
	}
}

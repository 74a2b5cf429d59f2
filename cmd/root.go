// Package cmd implements the cwa command-line tool: a cobra command tree
// with one root command and one file per verb, errors surfaced via
// cobra.CheckErr.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cwa",
	Short: "Decode AX3 .CWA accelerometer recordings into epoch-summary CSV",
	Long: `cwa decodes an AX3 .CWA binary accelerometer recording into a CSV of
fixed-duration epoch summaries: per-epoch acceleration magnitude (ENMO),
per-axis range and standard deviation, temperature, and quality counters.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

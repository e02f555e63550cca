// Package cmd provides the command-line interface of ddr4stim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ddr4stim",
	Short: "ddr4stim drives a DDR4 DIMM model with protocol-correct commands.",
	Long: `ddr4stim drives a DDR4 DIMM model with random but protocol-correct ` +
		`command sequences, checks the data read back, and records the pins ` +
		`as a waveform.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		return applyEnv(cmd.Flags())
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File with DDR4STIM_* variables that set flag defaults.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Failures exit through atexit so that recorders flush.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

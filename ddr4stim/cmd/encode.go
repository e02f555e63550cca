package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/signal"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <activate|precharge|read|write|refresh>",
	Short: "Print the pin frame of a command.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := signal.ParseCmdKind(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		bankGroup, _ := flags.GetUint8("bank-group")
		bank, _ := flags.GetUint8("bank")
		row, _ := flags.GetUint32("row")
		column, _ := flags.GetUint32("column")
		autoPrecharge, _ := flags.GetBool("auto-precharge")
		legacy, _ := flags.GetBool("legacy-bitmap")

		c := signal.Command{
			Kind:          kind,
			Bank:          signal.BankAddress{BankGroup: bankGroup, Bank: bank},
			Row:           signal.Row(row),
			Column:        signal.Column(column),
			AutoPrecharge: autoPrecharge,
		}

		if err := c.Validate(); err != nil {
			return err
		}

		encoder := encoding.NewEncoder(bitMap(legacy))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", c, encoder.Encode(c))

		return nil
	},
}

func bitMap(legacy bool) encoding.BitMap {
	if legacy {
		return encoding.LegacyBitMap()
	}

	return encoding.DefaultBitMap()
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	flags := encodeCmd.Flags()
	flags.Uint8("bank-group", 0, "Bank group of the command.")
	flags.Uint8("bank", 0, "Bank within the bank group.")
	flags.Uint32("row", 0, "Row to activate.")
	flags.Uint32("column", 0, "Column to read or write.")
	flags.Bool("auto-precharge", false, "Precharge after the burst.")
	flags.Bool("legacy-bitmap", false,
		"Use the command layout of the first hand-written testbench.")
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/dimm/trace"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <database.sqlite3>",
	Short: "Summarize the commands recorded by a run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		rejected, _ := cmd.Flags().GetBool("rejected")

		return inspect(cmd.Context(), reader, cmd.OutOrStdout(), rejected)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("rejected", false, "List the rejected commands.")
}

func inspect(
	ctx context.Context,
	reader datarecording.DataReader,
	out io.Writer,
	listRejected bool,
) error {
	reader.MapTable(datarecording.ExecTable, datarecording.ExecInfo{})
	reader.MapTable(trace.CommandTable, trace.CommandEntry{})

	info, _, err := reader.Query(ctx, datarecording.ExecTable,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, row := range info {
		e := row.(*datarecording.ExecInfo)
		fmt.Fprintf(out, "%s: %s\n", e.Property, e.Value)
	}

	commands, total, err := reader.Query(ctx, trace.CommandTable,
		datarecording.QueryParams{OrderBy: "StartCycle"})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	kinds := []string{}
	tagged := 0
	var rejected []*trace.CommandEntry

	for _, row := range commands {
		c := row.(*trace.CommandEntry)

		if _, ok := counts[c.What]; !ok {
			kinds = append(kinds, c.What)
		}

		counts[c.What]++

		if c.Tags != "" {
			tagged++
		}

		if c.Err != "" {
			rejected = append(rejected, c)
		}
	}

	fmt.Fprintf(out, "%d commands, %d rejected, %d tagged\n",
		total, len(rejected), tagged)

	for _, kind := range kinds {
		fmt.Fprintf(out, "  %-10s %d\n", kind, counts[kind])
	}

	if listRejected {
		for _, c := range rejected {
			fmt.Fprintf(out, "%d %s %s: %s\n",
				c.StartCycle, c.What, c.ID, strings.TrimSpace(c.Err))
		}
	}

	return nil
}

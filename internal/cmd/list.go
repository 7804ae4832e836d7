package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backed up icons",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := requireKeeper(cmd.Context())
		if err != nil {
			return err
		}

		records, err := k.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No backups found")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "KEY\tAPP\tFORMAT\tSIZE\tBACKED UP"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, rec := range records {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rec.Key,
				rec.DisplayName,
				rec.Format,
				humanize.Bytes(uint64(rec.Size)), //nolint:gosec // sizes are never negative
				humanize.Time(rec.Timestamp),
			); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

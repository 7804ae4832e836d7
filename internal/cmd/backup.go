package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/iconkeep/internal/keeper"
)

var backupCmd = &cobra.Command{
	Use:   "backup [app]",
	Short: "Back up the icon of an app",
	Long: `Copy the current icon of an app into the backup directory, replacing any
earlier backup of the same app.

The app is a display name such as "Safari" or a path to an .app bundle.
Without an argument every app in the app list is backed up; a failure for
one app does not stop the others.`,
	Example: `  # Back up a single app by name
  iconkeep backup Safari

  # Back up by path
  iconkeep backup /Applications/Slack.app

  # Back up everything in ~/.config/iconkeep/apps
  iconkeep backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, keeper.OpBackup, args)
	},
}

// runOperation runs op on the single app in args, or on the app list.
func runOperation(cmd *cobra.Command, op keeper.Operation, args []string) error {
	ctx := cmd.Context()
	k, err := requireKeeper(ctx)
	if err != nil {
		return err
	}

	var refs []string
	if len(args) == 1 {
		refs = args
	} else if refs, err = batchRefs(ctx); err != nil {
		return err
	}

	report := k.RunBatch(ctx, op, refs)

	if len(args) == 1 {
		res := report.Results[0]
		if res.Err != nil {
			return res.Err
		}
		writeResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), op, res)
	} else {
		writeReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
	}

	if op == keeper.OpRestore && report.Succeeded() > 0 {
		k.RefreshDock(ctx)
	}

	return report.Err()
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

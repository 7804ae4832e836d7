package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/iconkeep/internal/keeper"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [app]",
	Short: "Put a backed up icon back into an app",
	Long: `Write the backed up icon of an app back into its bundle and mark the
bundle as having a custom icon so Finder and the Dock pick it up.

The bundle is only modified once a backup for it has been found. Without
an argument every app in the app list is restored; a failure for one app
does not stop the others.`,
	Example: `  # Restore after an update
  iconkeep restore Safari

  # Restore everything and restart the Dock to redraw icons
  iconkeep restore --refresh-dock`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, keeper.OpRestore, args)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().Bool("refresh-dock", false, "restart the Dock after restoring")
}

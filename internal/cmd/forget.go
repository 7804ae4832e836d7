package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/iconkeep/internal/prompt"
)

// errConfirmationRequired is returned when forget cannot ask for confirmation.
var errConfirmationRequired = errors.New("not a terminal: pass --yes to forget without confirmation")

var forgetCmd = &cobra.Command{
	Use:   "forget <app>",
	Short: "Delete the backup of an app",
	Long: `Delete the stored icon backup of an app.

The app may be a name, a path, or the key shown by "iconkeep list", so
backups of apps that are no longer installed can be removed too.`,
	Example: `  # Forget with confirmation prompt
  iconkeep forget Safari

  # Forget an uninstalled app by key without confirmation
  iconkeep forget com.example.OldApp --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return fmt.Errorf("get yes flag: %w", err)
		}

		k, err := requireKeeper(cmd.Context())
		if err != nil {
			return err
		}

		if !yes {
			if !isInteractive() {
				return errConfirmationRequired
			}
			ok, err := prompt.New().Confirm(fmt.Sprintf("Forget the icon backup for %s?", ref), "The backup cannot be recovered.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled")
				return nil
			}
		}

		key, err := k.Forget(cmd.Context(), ref)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Forgot backup %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)

	forgetCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
}

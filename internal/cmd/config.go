package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/iconkeep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `Show the effective iconkeep configuration.

Values come from built-in defaults, the optional config file
($XDG_CONFIG_HOME/iconkeep/config.yaml) and ICONKEEP_* environment
variables, in increasing order of precedence.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key.`,
	Example: `  # Show all config
  iconkeep config

  # Show where backups are stored
  iconkeep config storage.backups

  # Show the config file path
  iconkeep config --path`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := LoaderFromContext(cmd.Context())
		cfg := ConfigFromContext(cmd.Context())
		if loader == nil || cfg == nil {
			return errors.New("config not initialized")
		}
		out := cmd.OutOrStdout()

		if showPath, _ := cmd.Flags().GetBool("path"); showPath { //nolint:errcheck // flag is defined below
			fmt.Fprintln(out, loader.Path())
			return nil
		}

		if len(args) == 1 {
			return showKey(out, loader, args[0])
		}
		return writeYAML(out, cfg)
	},
}

func showKey(out io.Writer, loader *config.Loader, key string) error {
	value, err := loader.Get(key)
	if err != nil {
		return fmt.Errorf("%w (valid: %v)", err, config.Keys())
	}

	switch v := value.(type) {
	case nil:
		fmt.Fprintln(out)
	case string:
		fmt.Fprintln(out, v)
	case map[string]any, []any, []string:
		return writeYAML(out, v)
	default:
		fmt.Fprintln(out, v)
	}
	return nil
}

func writeYAML(out io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "print the config file path")
}

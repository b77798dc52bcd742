package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gatewatch/internal/config"
	"github.com/rileyhilliard/gatewatch/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single config key",
	Long: `Set a dotted key in the config file, keeping comments and layout.

The result is validated before it is kept.

Examples:
  gatewatch config set listen :8080
  gatewatch config set analog.reference_voltage 3.3
  gatewatch config set viewer.codec cbor`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'gatewatch init' first")
		}
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s (%s)\n", args[0], args[1], path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(defaults, no file)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// setConfigValue edits path and rolls back if the result doesn't validate.
func setConfigValue(path, key, value string) error {
	before, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read "+path, "Check file permissions")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys are dotted paths such as analog.device")
	}

	after, err := config.Load(path)
	if err == nil {
		err = config.Validate(after)
	}
	if err != nil {
		if werr := os.WriteFile(path, before, 0644); werr != nil {
			return errors.WrapWithCode(werr, errors.ErrConfig,
				"Couldn't restore the previous config", path)
		}
		return err
	}
	return nil
}

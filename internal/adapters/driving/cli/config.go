package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quaero-labs/quaero/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. Values parse as bool, int or float
where possible, otherwise they are stored as strings.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func openConfig() (*file.ConfigStore, error) {
	cfg, err := file.NewConfigStore(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return cfg, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	val, ok := cfg.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	if err := cfg.Set(args[0], parseValue(args[1])); err != nil {
		return fmt.Errorf("set %q: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	if err := cfg.Delete(args[0]); err != nil {
		return fmt.Errorf("unset %q: %w", args[0], err)
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

// parseValue converts a CLI string into the most specific TOML type.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

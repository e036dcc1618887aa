package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"thoreinstein.com/floyd/pkg/bootstrap"
	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create floyd configuration",
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration floyd would run with after layering the config
file, the repository's .floyd.toml, FLOYD_* environment variables and flags.

Examples:
  floyd config show
  floyd config show --output yaml
  floyd config show --provider gemini`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg, configOutput)
	},
}

// configInitCmd writes a default config file
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration to the per-user config file, or to the
file named by --config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			var err error
			if path, err = bootstrap.DefaultConfigPath(); err != nil {
				return err
			}
		}
		if err := initConfigFile(path, configForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

var (
	configOutput string
	configForce  bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "toml", "output format: toml or yaml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
}

// writeConfig renders cfg to w in the given format.
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	var (
		out []byte
		err error
	)

	switch strings.ToLower(format) {
	case "", "toml":
		out, err = toml.Marshal(cfg.AsMap())
	case "yaml", "yml":
		out, err = yaml.Marshal(cfg.AsMap())
	default:
		return floyderrors.NewConfigError("output", fmt.Sprintf("unsupported output format %q (supported: toml, yaml)", format))
	}
	if err != nil {
		return errors.Wrap(err, "failed to render config")
	}

	_, err = w.Write(out)
	return err
}

// initConfigFile writes the default configuration as TOML to path. An
// existing file is left alone unless force is set.
func initConfigFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return floyderrors.NewConfigError("config",
			fmt.Sprintf("config file %s already exists (use --force to overwrite)", path))
	}

	out, err := toml.Marshal(config.Default().AsMap())
	if err != nil {
		return errors.Wrap(err, "failed to render default config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

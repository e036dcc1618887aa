package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

const (
	configName     = "floyd"
	configType     = "toml"
	repoConfigName = ".floyd.toml"
	envPrefix      = "FLOYD"
)

// FlagKeys maps command-line override flags to the config keys they set.
var FlagKeys = map[string]string{
	"provider":   "ai.provider",
	"model":      "ai.model",
	"diff-limit": "ai.diff_limit",
}

// Options controls how InitConfig locates and layers configuration.
type Options struct {
	ConfigFile string         // Explicit --config path; must exist when set
	Verbose    bool           // Report which files were used
	Flags      *pflag.FlagSet // Override flags named in FlagKeys, may be nil
	Stderr     io.Writer      // Destination for warnings, defaults to os.Stderr
}

// PreParseGlobalFlags manually scans os.Args for --config and --verbose flags
// before the main Cobra execution. This is a bootstrap step for configuration.
// It stops scanning as soon as it hits a non-flag argument or the "--" marker.
func PreParseGlobalFlags(args []string) (string, bool) {
	var cfgFile string
	var verbose bool

	for i := 1; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			break
		}

		// The first positional argument is the target branch or a subcommand.
		if !strings.HasPrefix(arg, "-") {
			break
		}

		switch {
		case arg == "--config" || arg == "-C":
			if i+1 < len(args) {
				cfgFile = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			cfgFile = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-C="):
			cfgFile = strings.TrimPrefix(arg, "-C=")
		case strings.HasPrefix(arg, "-C") && len(arg) > 2:
			cfgFile = arg[2:]
		case arg == "--verbose" || arg == "-v":
			verbose = true
		}
	}

	return cfgFile, verbose
}

// InitConfig reads the config file, repository-local overrides, FLOYD_*
// environment variables and override flags, in increasing precedence.
//
// A missing default config file yields defaults. An explicitly named file
// that does not exist is a ConfigError. A file that cannot be parsed is
// reported as a warning and skipped.
func InitConfig(opts Options) (*config.Config, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Reset Viper state to avoid carrying over stale settings from previous loads.
	viper.Reset()

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, floyderrors.NewConfigErrorWithCause("config",
				fmt.Sprintf("config file %s not found", opts.ConfigFile), err)
		}
		viper.SetConfigFile(opts.ConfigFile)
		viper.SetConfigType(configType)
	} else {
		for _, dir := range searchDirs() {
			viper.AddConfigPath(dir)
		}
		viper.SetConfigType(configType)
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(stderr, "Warning: ignoring unreadable config file: %v\n", err)
		}
	} else if opts.Verbose {
		fmt.Fprintln(stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Load repository-local config (.floyd.toml) if present
	LoadRepoLocalConfig(opts.Verbose, stderr)

	if err := bindFlags(opts.Flags); err != nil {
		return nil, err
	}

	return config.Load()
}

// searchDirs returns the per-user directories searched for floyd.toml,
// in priority order.
func searchDirs() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil
		}
		dir = filepath.Join(home, ".config")
	}
	return []string{dir, filepath.Join(dir, configName)}
}

// DefaultConfigPath is where `floyd config init` writes a new file.
func DefaultConfigPath() (string, error) {
	dirs := searchDirs()
	if len(dirs) == 0 {
		return "", errors.New("could not determine user config directory")
	}
	return filepath.Join(dirs[len(dirs)-1], configName+"."+configType), nil
}

func bindFlags(flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return floyderrors.NewConfigErrorWithCause(key, "failed to bind --"+name, err)
		}
	}
	return nil
}

// LoadRepoLocalConfig merges .floyd.toml from the git root, and from the
// current directory when that differs, on top of the loaded settings.
func LoadRepoLocalConfig(verbose bool, stderr io.Writer) {
	var localConfigPaths []string

	if gitRoot, err := FindGitRoot(); err == nil && gitRoot != "" {
		localConfigPaths = append(localConfigPaths, filepath.Join(gitRoot, repoConfigName))
		cwd, _ := os.Getwd()
		if cwd != gitRoot {
			localConfigPaths = append(localConfigPaths, repoConfigName)
		}
	} else {
		localConfigPaths = append(localConfigPaths, repoConfigName)
	}

	for _, configPath := range localConfigPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		localViper := viper.New()
		localViper.SetConfigFile(configPath)
		localViper.SetConfigType(configType)

		if err := localViper.ReadInConfig(); err != nil {
			fmt.Fprintf(stderr, "Warning: could not read local config %s: %v\n", configPath, err)
			continue
		}

		if verbose {
			fmt.Fprintf(stderr, "Using repository config: %s\n", configPath)
		}

		if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil {
			fmt.Fprintf(stderr, "Warning: could not merge local config: %v\n", err)
		}
	}
}

// FindGitRoot finds the root of the current git repository
func FindGitRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

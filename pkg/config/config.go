package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

// UnlimitedDiff disables diff truncation.
const UnlimitedDiff = -1

// Config represents the application configuration.
// Repository information is derived from git, not configuration.
type Config struct {
	AI     AIConfig     `mapstructure:"ai"`
	Git    GitConfig    `mapstructure:"git"`
	GitHub GitHubConfig `mapstructure:"github"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Provider     string        `mapstructure:"provider"`     // "claude", "gemini", "copilot"
	Model        string        `mapstructure:"model"`        // Empty means the tool's own default
	Instructions string        `mapstructure:"instructions"` // Custom guidance appended to the prompt
	Command      string        `mapstructure:"command"`      // Overrides the provider's executable
	Timeout      time.Duration `mapstructure:"timeout"`      // Zero means no timeout

	// DiffLimit is parsed leniently from ai.diff_limit, see parseDiffLimit.
	DiffLimit int `mapstructure:"-"`
}

// GitConfig holds git context gathering configuration
type GitConfig struct {
	Remote          string   `mapstructure:"remote"`           // Remote consulted for tracking refs
	RemoteOnly      bool     `mapstructure:"remote_only"`      // Only accept targets present on the remote
	ExcludePatterns []string `mapstructure:"exclude_patterns"` // Pathspecs left out of the diff
}

// GitHubConfig holds forge integration configuration
type GitHubConfig struct {
	Command          string   `mapstructure:"command"`           // gh executable (default: "gh")
	Draft            bool     `mapstructure:"draft"`             // Open pull requests as drafts
	DefaultReviewers []string `mapstructure:"default_reviewers"` // Reviewers requested on create
}

// ValidProviders is the closed set of supported AI providers.
var ValidProviders = []string{"claude", "gemini", "copilot"}

// Load loads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads the configuration from v after registering defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}

	// Set defaults
	SetDefaults(v)

	// Unmarshal the config
	if err := v.Unmarshal(config); err != nil {
		return nil, floyderrors.NewConfigErrorWithCause("", "failed to unmarshal config", err)
	}

	config.AI.DiffLimit = parseDiffLimit(v.Get("ai.diff_limit"))
	config.AI.Provider = NormalizeProvider(config.AI.Provider)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	cfg.AI.DiffLimit = UnlimitedDiff
	return cfg
}

// NormalizeProvider lowercases and trims a provider name.
func NormalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateProvider validates that a provider is supported.
func ValidateProvider(provider string) error {
	for _, valid := range ValidProviders {
		if provider == valid {
			return nil
		}
	}
	return floyderrors.NewConfigError("ai.provider",
		fmt.Sprintf("unsupported AI provider %q (supported: %s)", provider, strings.Join(ValidProviders, ", ")))
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if err := ValidateProvider(c.AI.Provider); err != nil {
		return err
	}
	if c.AI.Timeout < 0 {
		return floyderrors.NewConfigError("ai.timeout", "timeout must not be negative")
	}
	return nil
}

// AsMap renders the configuration as nested maps keyed like the config file.
func (c *Config) AsMap() map[string]any {
	return map[string]any{
		"ai": map[string]any{
			"provider":     c.AI.Provider,
			"model":        c.AI.Model,
			"diff_limit":   c.AI.DiffLimit,
			"instructions": c.AI.Instructions,
			"command":      c.AI.Command,
			"timeout":      c.AI.Timeout.String(),
		},
		"git": map[string]any{
			"remote":           c.Git.Remote,
			"remote_only":      c.Git.RemoteOnly,
			"exclude_patterns": nonNil(c.Git.ExcludePatterns),
		},
		"github": map[string]any{
			"command":           c.GitHub.Command,
			"draft":             c.GitHub.Draft,
			"default_reviewers": nonNil(c.GitHub.DefaultReviewers),
		},
	}
}

// SetDefaults registers default configuration values on v.
func SetDefaults(v *viper.Viper) {
	// AI defaults
	v.SetDefault("ai.provider", "claude")
	v.SetDefault("ai.model", "") // Empty means use the tool's default
	v.SetDefault("ai.diff_limit", UnlimitedDiff)
	v.SetDefault("ai.instructions", "")
	v.SetDefault("ai.command", "") // Empty means the provider name
	v.SetDefault("ai.timeout", "0s")

	// Git defaults
	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.remote_only", false)
	v.SetDefault("git.exclude_patterns", []string{"*.lock", "*-lock.json"})

	// GitHub defaults
	v.SetDefault("github.command", "gh")
	v.SetDefault("github.draft", false)
	v.SetDefault("github.default_reviewers", []string{})
}

// parseDiffLimit accepts integers, integral floats and numeric strings.
// Anything else, including values below -1, means unlimited.
func parseDiffLimit(raw any) int {
	var n int64
	switch val := raw.(type) {
	case int:
		n = int64(val)
	case int64:
		n = val
	case int32:
		n = int64(val)
	case uint64:
		if val > math.MaxInt32 {
			return UnlimitedDiff
		}
		n = int64(val)
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.IsNaN(val) {
			return UnlimitedDiff
		}
		n = int64(val)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return UnlimitedDiff
		}
		n = parsed
	default:
		return UnlimitedDiff
	}

	if n < 0 || n > math.MaxInt32 {
		return UnlimitedDiff
	}
	return int(n)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Package config loads and validates this binary's configuration: the
// risk policy (high_risk/eval expressions and thresholds), provider cache
// TTLs, the cache root, logging, and metrics.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vitaliisemenov/alert-history/internal/expr"
	"github.com/vitaliisemenov/alert-history/internal/facts"
)

const envPrefix = "APRZ"

// defaultCacheTTL backs every provider's cache_ttl default: regenerate
// provider-fetched facts no more often than once a week.
const defaultCacheTTL = 7 * 24 * time.Hour

// defaultDumpURL is the public crates.io registry dump the registry
// provider ingests when no override is configured.
const defaultDumpURL = "https://static.crates.io/db-dump.tar.gz"

// ExpressionConfig is one entry of the high_risk or eval expression arrays:
// a name, optional description, the CEL source, and an optional points
// budget (meaningful only in the eval array).
type ExpressionConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Expression  string `mapstructure:"expression"`
	Points      *int   `mapstructure:"points"`
}

// LogConfig configures the ambient structured logger, the same shape the
// teacher's pkg/logger Config uses.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// Config is the full application configuration, unmarshaled from an
// optional YAML file layered under environment variable overrides.
type Config struct {
	HighRisk            []ExpressionConfig `mapstructure:"high_risk"`
	Eval                []ExpressionConfig `mapstructure:"eval"`
	MediumRiskThreshold float64            `mapstructure:"medium_risk_threshold"`
	LowRiskThreshold    float64            `mapstructure:"low_risk_threshold"`

	CratesCacheTTL     time.Duration `mapstructure:"crates_cache_ttl"`
	HostingCacheTTL    time.Duration `mapstructure:"hosting_cache_ttl"`
	CodebaseCacheTTL   time.Duration `mapstructure:"codebase_cache_ttl"`
	CoverageCacheTTL   time.Duration `mapstructure:"coverage_cache_ttl"`
	AdvisoriesCacheTTL time.Duration `mapstructure:"advisories_cache_ttl"`

	CacheDir    string `mapstructure:"cache_dir"`
	DumpURL     string `mapstructure:"dump_url"`
	GitHubToken string `mapstructure:"github_token"`

	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoadConfig loads configuration from an optional YAML file layered under
// defaults and environment variable overrides, then validates it.
func LoadConfig(configPath string) (*Config, error) {
	setDefaults()
	bindEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: reading config file: %v", facts.ErrConfig, err)
			}
		}
	}

	return unmarshalAndValidate()
}

// LoadConfigFromEnv loads configuration from defaults and environment
// variables only, with no file.
func LoadConfigFromEnv() (*Config, error) {
	setDefaults()
	bindEnv()
	return unmarshalAndValidate()
}

func bindEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := viper.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling config: %v", facts.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("high_risk", []map[string]any{})
	viper.SetDefault("eval", []map[string]any{})
	viper.SetDefault("medium_risk_threshold", 30.0)
	viper.SetDefault("low_risk_threshold", 70.0)

	viper.SetDefault("crates_cache_ttl", defaultCacheTTL)
	viper.SetDefault("hosting_cache_ttl", defaultCacheTTL)
	viper.SetDefault("codebase_cache_ttl", defaultCacheTTL)
	viper.SetDefault("coverage_cache_ttl", defaultCacheTTL)
	viper.SetDefault("advisories_cache_ttl", defaultCacheTTL)

	viper.SetDefault("cache_dir", "")
	viper.SetDefault("dump_url", defaultDumpURL)
	viper.SetDefault("github_token", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.filename", "")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.port", 9090)
}

// Validate enforces §6's validation rules: thresholds in range, medium
// strictly below low, and every configured expression actually compiles.
func (c *Config) Validate() error {
	if c.MediumRiskThreshold < 0 || c.MediumRiskThreshold > 100 {
		return fmt.Errorf("%w: medium_risk_threshold must be in [0, 100], got %v", facts.ErrConfig, c.MediumRiskThreshold)
	}
	if c.LowRiskThreshold < 0 || c.LowRiskThreshold > 100 {
		return fmt.Errorf("%w: low_risk_threshold must be in [0, 100], got %v", facts.ErrConfig, c.LowRiskThreshold)
	}
	if c.MediumRiskThreshold >= c.LowRiskThreshold {
		return fmt.Errorf("%w: medium_risk_threshold (%v) must be strictly less than low_risk_threshold (%v)", facts.ErrConfig, c.MediumRiskThreshold, c.LowRiskThreshold)
	}

	if _, err := c.compilePolicy(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		return fmt.Errorf("%w: log level cannot be empty", facts.ErrConfig)
	}

	return nil
}

// CompilePolicy builds the expression environment and compiles the
// configured high_risk and eval expressions into a ready-to-evaluate
// Policy. Called once at startup; a compile error here is fatal.
func (c *Config) CompilePolicy() (*expr.Policy, error) {
	return c.compilePolicy()
}

func (c *Config) compilePolicy() (*expr.Policy, error) {
	env, err := expr.NewEnv()
	if err != nil {
		return nil, err
	}
	highRisk, err := toRawExpressions(c.HighRisk)
	if err != nil {
		return nil, err
	}
	eval, err := toRawExpressions(c.Eval)
	if err != nil {
		return nil, err
	}
	return expr.NewPolicy(env, highRisk, eval, c.MediumRiskThreshold, c.LowRiskThreshold)
}

func toRawExpressions(cfgs []ExpressionConfig) ([]expr.RawExpression, error) {
	out := make([]expr.RawExpression, 0, len(cfgs))
	for _, c := range cfgs {
		var points *uint32
		if c.Points != nil {
			if *c.Points < 0 {
				return nil, fmt.Errorf("%w: expression %q: points must not be negative", facts.ErrConfig, c.Name)
			}
			p := uint32(*c.Points)
			points = &p
		}
		out = append(out, expr.RawExpression{
			Name:        c.Name,
			Description: c.Description,
			Source:      c.Expression,
			Points:      points,
		})
	}
	return out, nil
}

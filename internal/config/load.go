package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrMissingJobs      = errors.New("jobs path is required")
	ErrMissingDataDir   = errors.New("data_dir is required")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrInvalidDepth     = errors.New("git.depth must not be negative")
	ErrUnknownGenerator = errors.New("unknown generator type")
	ErrMissingCommand   = errors.New("generator.command is required for type 'command'")
	ErrMissingEndpoint  = errors.New("generator.endpoint is required for type 'http'")
	ErrInvalidMaxSize   = errors.New("invalid generator.max_size")
	ErrInvalidLogLevel  = errors.New("invalid logging.level")
	ErrInvalidLogFormat = errors.New("invalid logging.format")
)

const envPrefix = "GIST_CRAWLER"

// Options controls Load.
type Options struct {
	Discover DiscoverOptions
	// Flags bound over every other layer; only flags the user set count.
	Flags *pflag.FlagSet
	// FlagKeys maps config keys to flag names in Flags.
	FlagKeys map[string]string
}

// Load resolves configuration from defaults, the discovered config files
// (system, user, project), GIST_CRAWLER_* environment variables and flags,
// in increasing order of precedence. Missing files are skipped; a file
// that exists but cannot be parsed is an error. The returned layers
// report which files were used.
func Load(opts Options) (*Config, []ConfigLayerInfo, error) {
	v := viper.New()
	setDefaults(v)

	layers := DiscoverPaths(opts.Discover)
	for i := range layers {
		layer := &layers[i]
		if _, err := os.Stat(layer.Path); err != nil {
			continue
		}
		v.SetConfigFile(layer.Path)
		if err := v.MergeInConfig(); err != nil {
			layer.Err = err
			return nil, layers, fmt.Errorf("reading %s config %s: %w", layer.Level, layer.Path, err)
		}
		layer.Loaded = true
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.FlagKeys {
		if opts.Flags == nil {
			break
		}
		if f := opts.Flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, layers, fmt.Errorf("binding flag --%s: %w", flag, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, layers, fmt.Errorf("decoding config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, layers, err
	}
	return &cfg, layers, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("jobs", "crawl-jobs.txt")
	v.SetDefault("data_dir", "data")
	v.SetDefault("state_file", "crawl-state.yaml")

	v.SetDefault("git.binary", "git")
	v.SetDefault("git.timeout", "10m")
	v.SetDefault("git.depth", 0)

	v.SetDefault("generator.type", GeneratorCommand)
	v.SetDefault("generator.command", []string{"gitingest", "{{.CodeDir}}", "--output", "{{.Output}}"})
	v.SetDefault("generator.endpoint", "https://gitingest.com/api/ingest")
	v.SetDefault("generator.timeout", "90s")
	v.SetDefault("generator.max_size", "50MB")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// Validate checks a Config for semantic correctness.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Jobs == "" {
		errs = append(errs, ErrMissingJobs)
	}
	if cfg.DataDir == "" {
		errs = append(errs, ErrMissingDataDir)
	}

	if cfg.Git.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("git.timeout %s: %w", cfg.Git.Timeout, ErrInvalidTimeout))
	}
	if cfg.Git.Depth < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidDepth, cfg.Git.Depth))
	}

	switch cfg.Generator.Type {
	case GeneratorCommand:
		if len(cfg.Generator.Command) == 0 {
			errs = append(errs, ErrMissingCommand)
		}
	case GeneratorHTTP:
		if cfg.Generator.Endpoint == "" {
			errs = append(errs, ErrMissingEndpoint)
		}
	case GeneratorNone:
	default:
		errs = append(errs, fmt.Errorf("%w '%s', must be one of: command, http, none", ErrUnknownGenerator, cfg.Generator.Type))
	}
	if cfg.Generator.Type != GeneratorNone && cfg.Generator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("generator.timeout %s: %w", cfg.Generator.Timeout, ErrInvalidTimeout))
	}
	if _, err := cfg.Generator.MaxBytes(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w '%s'", ErrInvalidLogLevel, cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w '%s'", ErrInvalidLogFormat, cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// MaxBytes parses max_size. Empty or "0" means no limit.
func (g GeneratorConfig) MaxBytes() (int64, error) {
	if g.MaxSize == "" || g.MaxSize == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(g.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %w", ErrInvalidMaxSize, g.MaxSize, err)
	}
	return int64(n), nil
}

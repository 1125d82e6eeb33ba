package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Load resolves a Config from, in ascending precedence: built-in defaults,
// an optional TOML file, environment variables, then cfg itself (typically
// already populated from CLI flags by the caller). A nil reader skips the
// file layer entirely.
func Load(reader io.Reader, cli *Config) (*Config, error) {
	cfg := Default()

	if reader != nil {
		file, err := loadFromReader(reader)
		if err != nil {
			return nil, err
		}
		cfg.mergeFile(file)
	}

	env, err := readFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.mergeEnv(env)

	cfg.mergeCLI(cli)
	return cfg, nil
}

// fileConfig shadows Config for TOML decoding so durations can be written
// the human way ("20s") instead of as nanosecond integers.
type fileConfig struct {
	Config
	Timeout string `toml:"timeout"`
}

func loadFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	tmp := &fileConfig{}
	if err := toml.Unmarshal(data, tmp); err != nil {
		return nil, fmt.Errorf("config: decode toml: %w", err)
	}
	if tmp.Timeout != "" {
		d, err := time.ParseDuration(tmp.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config: invalid timeout %q: %w", tmp.Timeout, err)
		}
		tmp.Config.Timeout = d
	}
	return &tmp.Config, nil
}

// readFromEnv builds a partially-populated Config sourced purely from
// environment variables. GITHUB_TOKEN is the conventional variable for
// the fallback token; the rest ride along for operational convenience.
func readFromEnv() (*Config, error) {
	cfg := &Config{}
	if token := getEnv("GITHUB_TOKEN", ""); token != "" {
		cfg.GithubToken = token
	}
	if ua := getEnv("LINK_VALIDATOR_USER_AGENT", ""); ua != "" {
		cfg.UserAgent = ua
	}
	if mc := getEnv("LINK_VALIDATOR_MAX_CONCURRENCY", ""); mc != "" {
		n, err := strconv.Atoi(mc)
		if err != nil {
			return nil, fmt.Errorf("config: invalid LINK_VALIDATOR_MAX_CONCURRENCY %q: %w", mc, err)
		}
		cfg.MaxConcurrency = n
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

// mergeFile folds a file-sourced Config onto cfg. Every non-zero-valued
// field in file wins; this layer runs before env and CLI, so both of those
// can still override it.
func (cfg *Config) mergeFile(file *Config) {
	if file == nil {
		return
	}
	cfg.Include = mergeSlice(cfg.Include, file.Include)
	cfg.Exclude = mergeSlice(cfg.Exclude, file.Exclude)
	cfg.ExcludeAllPrivate = mergeBool(cfg.ExcludeAllPrivate, file.ExcludeAllPrivate)
	cfg.ExcludePrivate = mergeBool(cfg.ExcludePrivate, file.ExcludePrivate)
	cfg.ExcludeLinkLocal = mergeBool(cfg.ExcludeLinkLocal, file.ExcludeLinkLocal)
	cfg.ExcludeLoopback = mergeBool(cfg.ExcludeLoopback, file.ExcludeLoopback)
	if file.MaxRedirects != 0 {
		cfg.MaxRedirects = file.MaxRedirects
	}
	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	cfg.AllowInsecure = mergeBool(cfg.AllowInsecure, file.AllowInsecure)
	if len(file.CustomHeaders) > 0 {
		if cfg.CustomHeaders == nil {
			cfg.CustomHeaders = make(map[string]string, len(file.CustomHeaders))
		}
		for k, v := range file.CustomHeaders {
			cfg.CustomHeaders[k] = v
		}
	}
	if file.Method != "" {
		cfg.Method = file.Method
	}
	if file.Timeout != 0 {
		cfg.Timeout = file.Timeout
	}
	if file.GithubToken != "" {
		cfg.GithubToken = file.GithubToken
	}
	if file.Scheme != "" {
		cfg.Scheme = file.Scheme
	}
	if len(file.Accepted) > 0 {
		cfg.Accepted = file.Accepted
	}
	if file.MaxConcurrency != 0 {
		cfg.MaxConcurrency = file.MaxConcurrency
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	cfg.SkipMissing = mergeBool(cfg.SkipMissing, file.SkipMissing)
	cfg.Progress = mergeBool(cfg.Progress, file.Progress)
	cfg.Verbose = mergeBool(cfg.Verbose, file.Verbose)
	if file.OutputPath != "" {
		cfg.OutputPath = file.OutputPath
	}
	cfg.OutputJSON = mergeBool(cfg.OutputJSON, file.OutputJSON)
}

func (cfg *Config) mergeEnv(env *Config) {
	if env == nil {
		return
	}
	if env.GithubToken != "" {
		cfg.GithubToken = env.GithubToken
	}
	if env.UserAgent != "" {
		cfg.UserAgent = env.UserAgent
	}
	if env.MaxConcurrency != 0 {
		cfg.MaxConcurrency = env.MaxConcurrency
	}
}

// mergeCLI applies the CLI-sourced Config last. Every non-zero (or, for
// *bool, non-nil) field in cli wins over whatever the file/env layers
// produced: the
// caller (cmd/link-validator) is expected to have already resolved
// "flag explicitly set vs left at its default" via pflag.Changed before
// calling Load, so by the time a field reaches here it is either the
// zero value (meaning "let the file/env layer decide") or a deliberate
// override.
func (cfg *Config) mergeCLI(cli *Config) {
	if cli == nil {
		return
	}
	cfg.Include = mergeSlice(cfg.Include, cli.Include)
	cfg.Exclude = mergeSlice(cfg.Exclude, cli.Exclude)
	cfg.ExcludeAllPrivate = mergeBool(cfg.ExcludeAllPrivate, cli.ExcludeAllPrivate)
	cfg.ExcludePrivate = mergeBool(cfg.ExcludePrivate, cli.ExcludePrivate)
	cfg.ExcludeLinkLocal = mergeBool(cfg.ExcludeLinkLocal, cli.ExcludeLinkLocal)
	cfg.ExcludeLoopback = mergeBool(cfg.ExcludeLoopback, cli.ExcludeLoopback)
	if cli.MaxRedirects != 0 {
		cfg.MaxRedirects = cli.MaxRedirects
	}
	if cli.UserAgent != "" {
		cfg.UserAgent = cli.UserAgent
	}
	cfg.AllowInsecure = mergeBool(cfg.AllowInsecure, cli.AllowInsecure)
	if len(cli.CustomHeaders) > 0 {
		if cfg.CustomHeaders == nil {
			cfg.CustomHeaders = make(map[string]string, len(cli.CustomHeaders))
		}
		for k, v := range cli.CustomHeaders {
			cfg.CustomHeaders[k] = v
		}
	}
	if cli.Method != "" {
		cfg.Method = cli.Method
	}
	if cli.Timeout != 0 {
		cfg.Timeout = cli.Timeout
	}
	if cli.GithubToken != "" {
		cfg.GithubToken = cli.GithubToken
	}
	if cli.Scheme != "" {
		cfg.Scheme = cli.Scheme
	}
	if len(cli.Accepted) > 0 {
		cfg.Accepted = cli.Accepted
	}
	if cli.MaxConcurrency != 0 {
		cfg.MaxConcurrency = cli.MaxConcurrency
	}
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}
	cfg.SkipMissing = mergeBool(cfg.SkipMissing, cli.SkipMissing)
	cfg.Progress = mergeBool(cfg.Progress, cli.Progress)
	cfg.Verbose = mergeBool(cfg.Verbose, cli.Verbose)
	if cli.OutputPath != "" {
		cfg.OutputPath = cli.OutputPath
	}
	cfg.OutputJSON = mergeBool(cfg.OutputJSON, cli.OutputJSON)
	if cli.BasicAuthUser != "" {
		cfg.BasicAuthUser = cli.BasicAuthUser
	}
	if cli.BasicAuthPass != "" {
		cfg.BasicAuthPass = cli.BasicAuthPass
	}
}

func mergeBool(existing, incoming *bool) *bool {
	if incoming != nil {
		return incoming
	}
	return existing
}

func mergeSlice(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	return incoming
}

// Package config models the run-wide options the core pipeline consumes:
// include/exclude policy, redirect and timeout behavior, custom headers,
// GitHub fallback credentials, and the pipeline's concurrency and output
// knobs.
//
// Booleans are represented as *bool so "unset" and "false" are
// distinguishable when merging CLI flags, a TOML config file, and the
// built-in defaults (see Load).
package config

import (
	"net/url"
	"time"
)

// Config is the fully-resolved set of options the core pipeline consumes.
type Config struct {
	Include           []string          `toml:"include" validate:"dive,required"`
	Exclude           []string          `toml:"exclude" validate:"dive,required"`
	ExcludeAllPrivate *bool             `toml:"exclude_all_private"`
	ExcludePrivate    *bool             `toml:"exclude_private"`
	ExcludeLinkLocal  *bool             `toml:"exclude_link_local"`
	ExcludeLoopback   *bool             `toml:"exclude_loopback"`
	MaxRedirects      int               `toml:"max_redirects" validate:"gte=0"`
	UserAgent         string            `toml:"user_agent" validate:"required"`
	AllowInsecure     *bool             `toml:"allow_insecure"`
	CustomHeaders     map[string]string `toml:"custom_headers"`
	Method            string            `toml:"method" validate:"required,oneof=GET HEAD POST PUT DELETE OPTIONS"`
	// Timeout is decoded from the file layer by hand ("20s" in TOML, see
	// loadFromReader) since a TOML string can't unmarshal into a
	// time.Duration directly.
	Timeout time.Duration `toml:"-" validate:"gte=0"`
	GithubToken       string            `toml:"github_token"`
	Scheme            string            `toml:"scheme" validate:"omitempty,oneof=http https"`
	Accepted          []int             `toml:"accepted" validate:"dive,gte=100,lte=599"`
	MaxConcurrency    int               `toml:"max_concurrency" validate:"gte=1"`
	BaseURL           string            `toml:"base_url"`
	SkipMissing       *bool             `toml:"skip_missing"`
	Progress          *bool             `toml:"progress"`
	Verbose           *bool             `toml:"verbose"`
	OutputPath        string            `toml:"output"`
	OutputJSON        *bool             `toml:"output_json"`

	// BasicAuthUser/BasicAuthPass produce the Authorization: Basic header
	// sent with every check. Intentionally left out of the TOML schema:
	// credentials belong in the environment or a flag, not a checked-in
	// file.
	BasicAuthUser string `toml:"-"`
	BasicAuthPass string `toml:"-"`
}

// Default returns the built-in defaults. CLI flags for non-bool fields
// default to their zero value, not to these values: mergeCLI treats a
// zero-valued field as "no override," so a flag defaulting to anything
// else would silently clobber the file layer.
func Default() *Config {
	return &Config{
		MaxRedirects:   10,
		UserAgent:      "curl/8.0 (link-validator)",
		Method:         "GET",
		Timeout:        20 * time.Second,
		MaxConcurrency: 8,
	}
}

// BoolOr dereferences b, or returns fallback when b is nil.
func BoolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

// ParsedBaseURL parses BaseURL, returning nil if it is empty or malformed.
// Malformed base URLs are a validation-time concern (see Validate); callers
// of ParsedBaseURL are expected to run after validation has already
// rejected a bad value.
func (c *Config) ParsedBaseURL() *url.URL {
	if c.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil
	}
	return u
}

// AcceptedSet returns Accepted as a lookup set, or nil when Accepted is
// empty. An empty accepted list means "no status-code overrides," never
// an empty-but-non-nil set that rejects everything.
func (c *Config) AcceptedSet() map[int]bool {
	if len(c.Accepted) == 0 {
		return nil
	}
	set := make(map[int]bool, len(c.Accepted))
	for _, code := range c.Accepted {
		set[code] = true
	}
	return set
}

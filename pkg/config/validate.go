package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation over field shapes (go-playground/
// validator) and then the cross-field business rules tag validation can't
// express: regex compilability, the basic-auth pairing, and that a
// non-empty base URL parses.
func (cfg *Config) Validate() error {
	var errs error
	if err := structValidator.Struct(cfg); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("config: %w", err))
	}
	for _, pat := range cfg.Include {
		if _, err := regexp.Compile(pat); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("config: invalid include pattern %q: %w", pat, err))
		}
	}
	for _, pat := range cfg.Exclude {
		if _, err := regexp.Compile(pat); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("config: invalid exclude pattern %q: %w", pat, err))
		}
	}
	if (cfg.BasicAuthUser == "") != (cfg.BasicAuthPass == "") {
		errs = multierr.Append(errs, fmt.Errorf("config: basic auth requires both a user and a password"))
	}
	if cfg.ParsedBaseURL() == nil && cfg.BaseURL != "" {
		errs = multierr.Append(errs, fmt.Errorf("config: base_url %q does not parse as a URL", cfg.BaseURL))
	}
	return errs
}

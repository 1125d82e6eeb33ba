package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-ko/link-validator/pkg/config"
)

func TestValidateDefaultsPass(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestValidateRejectsBadIncludeRegex(t *testing.T) {
	cfg := config.Default()
	cfg.Include = []string{"("}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	cfg := config.Default()
	cfg.Method = "FETCH"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroMaxConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.MaxConcurrency = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOneSidedBasicAuth(t *testing.T) {
	cfg := config.Default()
	cfg.BasicAuthUser = "alice"
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsPairedBasicAuth(t *testing.T) {
	cfg := config.Default()
	cfg.BasicAuthUser = "alice"
	cfg.BasicAuthPass = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnparseableBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "://not-a-url"
	assert.Error(t, cfg.Validate())
}

func TestBoolOrReturnsFallbackWhenNil(t *testing.T) {
	assert.True(t, config.BoolOr(nil, true))
	assert.False(t, config.BoolOr(nil, false))
}

func TestBoolOrReturnsDereferencedValue(t *testing.T) {
	v := false
	assert.False(t, config.BoolOr(&v, true))
}

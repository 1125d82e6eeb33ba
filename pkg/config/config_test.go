package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-ko/link-validator/pkg/config"
)

func boolPtr(b bool) *bool { return &b }

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default().MaxConcurrency, cfg.MaxConcurrency)
	assert.Equal(t, config.Default().Method, cfg.Method)
}

func TestLoadFileOverridesDefault(t *testing.T) {
	file := strings.NewReader(`
max_redirects = 5
user_agent = "test-agent/1.0"
timeout = "5s"
`)
	cfg, err := config.Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.Equal(t, "test-agent/1.0", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadCLIOverridesFile(t *testing.T) {
	file := strings.NewReader(`user_agent = "from-file"`)
	cli := &config.Config{UserAgent: "from-cli"}

	cfg, err := config.Load(file, cli)
	require.NoError(t, err)
	assert.Equal(t, "from-cli", cfg.UserAgent)
}

func TestLoadCLIBoolOverridesFileBool(t *testing.T) {
	file := strings.NewReader(`verbose = true`)
	cli := &config.Config{Verbose: boolPtr(false)}

	cfg, err := config.Load(file, cli)
	require.NoError(t, err)
	// cli explicitly set Verbose (non-nil pointer, even though false), so
	// it wins over the file's true.
	assert.False(t, *cfg.Verbose)
}

func TestLoadEmptyFileIsSkipped(t *testing.T) {
	cfg, err := config.Load(strings.NewReader("   \n"), nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default().MaxConcurrency, cfg.MaxConcurrency)
}

func TestLoadMalformedTOMLErrors(t *testing.T) {
	_, err := config.Load(strings.NewReader("not = [valid"), nil)
	assert.Error(t, err)
}

func TestAcceptedSetEmptyIsNil(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, cfg.AcceptedSet())
}

func TestAcceptedSetNonEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Accepted = []int{403, 429}
	set := cfg.AcceptedSet()
	assert.True(t, set[403])
	assert.True(t, set[429])
	assert.False(t, set[200])
}

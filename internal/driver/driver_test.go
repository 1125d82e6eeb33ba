package driver_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-ko/link-validator/internal/driver"
	"github.com/your-ko/link-validator/pkg/checker"
	"github.com/your-ko/link-validator/pkg/collector"
	"github.com/your-ko/link-validator/pkg/config"
)

func TestRunSucceedsWhenEveryLinkResolves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	content := "see [docs](" + srv.URL + "/docs)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := config.Default()
	cfg.Timeout = 2 * time.Second
	cfg.MaxConcurrency = 2

	d := driver.New(cfg, nil)
	result, exitCode, err := d.Run(t.Context(), []collector.Input{{Kind: collector.FilePath, Value: path}})
	require.NoError(t, err)

	assert.Equal(t, driver.ExitSuccess, exitCode)
	assert.True(t, result.Stats.IsSuccess())
	assert.Equal(t, 1, result.Stats.Count(checker.Ok))
}

func TestRunReportsLinkCheckFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	content := "see [docs](" + srv.URL + "/missing)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := config.Default()
	cfg.Timeout = 2 * time.Second
	cfg.MaxConcurrency = 2

	d := driver.New(cfg, nil)
	result, exitCode, err := d.Run(t.Context(), []collector.Input{{Kind: collector.FilePath, Value: path}})
	require.NoError(t, err)

	assert.Equal(t, driver.ExitLinkCheckFailed, exitCode)
	assert.False(t, result.Stats.IsSuccess())
}

func TestRunErrorsWhenCollectingUnreadableInput(t *testing.T) {
	cfg := config.Default()
	d := driver.New(cfg, nil)

	_, _, err := d.Run(t.Context(), []collector.Input{{Kind: collector.FilePath, Value: filepath.Join(t.TempDir(), "missing.md")}})
	assert.Error(t, err)
}

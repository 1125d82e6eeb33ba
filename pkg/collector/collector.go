package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/your-ko/link-validator/pkg/extract"
	"github.com/your-ko/link-validator/pkg/uri"
)

// Options configures a Collect call.
type Options struct {
	BaseURL        *url.URL
	MaxConcurrency int64
	SkipMissing    bool
	HTTPClient     *http.Client
	Stdin          io.Reader
	Logger         *zap.Logger
}

// Collect resolves every Input into extracted URIs, fanning out across
// MaxConcurrency concurrent workers bounded by a weighted semaphore. Errors
// from individual inputs are combined with multierr rather than aborting
// the whole run, so a single bad glob or unreachable URL doesn't hide
// errors surfaced by its siblings; when SkipMissing is set, a missing-file
// error is logged and dropped instead of being appended to the result.
func Collect(ctx context.Context, inputs []Input, opts Options) (uri.Set, error) {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sem := semaphore.NewWeighted(opts.MaxConcurrency)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		combined uri.Set = uri.NewSet()
		errs     error
	)

	for _, in := range inputs {
		in := in
		if err := sem.Acquire(ctx, 1); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			set, err := collectOne(ctx, in, opts)
			if err != nil {
				if opts.SkipMissing && skippable(in, err) {
					logger.Warn("skipping unreadable input", zap.String("input", in.Value), zap.Error(err))
					return
				}
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("input %q: %w", in.Value, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			combined.Merge(set)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return combined, errs
}

// skippable reports whether SkipMissing may demote err to a warning for
// this input: a missing local file, or any fetch failure on a remote
// input. Glob syntax errors stay fatal regardless — a mistyped pattern is
// a configuration mistake, not a missing input.
func skippable(in Input, err error) bool {
	if in.Kind == RemoteURL {
		return true
	}
	return os.IsNotExist(err)
}

func collectOne(ctx context.Context, in Input, opts Options) (uri.Set, error) {
	switch in.Kind {
	case FilePath:
		return collectFile(in.Value, opts.BaseURL)
	case Glob:
		return collectGlob(in.Value, opts)
	case RemoteURL:
		return collectRemote(ctx, in.Value, opts)
	case Stdin:
		content, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return nil, err
		}
		ft := in.FileType
		return extract.Extract(content, ft, opts.BaseURL)
	case String:
		return extract.Extract([]byte(in.Content), in.FileType, opts.BaseURL)
	default:
		return nil, fmt.Errorf("collector: unknown input kind %v", in.Kind)
	}
}

func collectFile(path string, base *url.URL) (uri.Set, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return extract.Extract(content, extract.DetectFileType(path), base)
}

func collectGlob(pattern string, opts Options) (uri.Set, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	combined := uri.NewSet()
	var errs error
	for _, m := range matches {
		set, err := collectFile(m, opts.BaseURL)
		if err != nil {
			if opts.SkipMissing && os.IsNotExist(err) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("glob match %q: %w", m, err))
			continue
		}
		combined.Merge(set)
	}
	return combined, errs
}

func collectRemote(ctx context.Context, rawURL string, opts Options) (uri.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", rawURL, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	fileType := extract.DetectFileTypeFromContentType(resp.Header.Get("Content-Type"))
	base := opts.BaseURL
	if base == nil {
		if u, err := url.Parse(rawURL); err == nil {
			base = u
		}
	}
	return extract.Extract(content, fileType, base)
}

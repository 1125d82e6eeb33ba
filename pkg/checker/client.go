// Package checker turns one URI into one Response by executing an HTTP
// request against it, classifying the outcome, and — for github.com hosts
// that come back Failed or Error — retrying through the GitHub API
// fallback.
package checker

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/your-ko/link-validator/pkg/config"
	"github.com/your-ko/link-validator/pkg/exclude"
	"github.com/your-ko/link-validator/pkg/github"
	"github.com/your-ko/link-validator/pkg/uri"
)

// Client checks a single URI at a time. The pool constructs one per
// worker: each gets its own *http.Client (and therefore its own
// connection pool; no cookie jar is configured), sidestepping cross-worker
// contention rather than sharing one client behind a mutex.
type Client struct {
	http     *http.Client
	policy   *exclude.Policy
	fallback *github.Fallback
	limiters map[string]*rate.Limiter
	logger   *zap.Logger

	method        string
	userAgent     string
	headers       map[string]string
	basicAuthUser string
	basicAuthPass string
	maxRedirects  int
	accepted      map[int]bool
}

// New builds a Client from a resolved Config and a shared exclusion
// Policy. Each Client gets its own *http.Client so redirect history,
// connection pooling, and TLS session caches never cross worker
// boundaries.
func New(cfg *config.Config, policy *exclude.Policy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		policy:        policy,
		logger:        logger,
		method:        cfg.Method,
		userAgent:     cfg.UserAgent,
		headers:       cfg.CustomHeaders,
		basicAuthUser: cfg.BasicAuthUser,
		basicAuthPass: cfg.BasicAuthPass,
		maxRedirects:  cfg.MaxRedirects,
		accepted:      cfg.AcceptedSet(),
		limiters:      make(map[string]*rate.Limiter),
	}
	if cfg.GithubToken != "" {
		c.fallback = github.NewFallback(context.Background(), cfg.GithubToken)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: config.BoolOr(cfg.AllowInsecure, false)}, //nolint:gosec // opt-in via allow_insecure
	}
	c.http = &http.Client{
		Timeout:       cfg.Timeout,
		Transport:     transport,
		CheckRedirect: c.checkRedirect,
	}
	return c
}

// checkRedirect enforces maxRedirects and reports a sentinel error once
// exhausted so Check can tell "redirect limit hit" apart from any other
// transport error and classify it as Redirected rather than Error.
var errRedirectsExhausted = errors.New("checker: redirect limit exhausted")

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > c.maxRedirects {
		return errRedirectsExhausted
	}
	return nil
}

// Check never returns an error: every failure mode becomes a Status.
func (c *Client) Check(ctx context.Context, u uri.URI) Response {
	if u.Kind() == uri.Mail {
		return Response{URI: u, Status: Status{Kind: Excluded}}
	}
	if c.policy != nil && c.policy.Excluded(ctx, u) {
		return Response{URI: u, Status: Status{Kind: Excluded}}
	}

	if err := c.limiterFor(u.Host()).Wait(ctx); err != nil {
		return Response{URI: u, Status: Status{Kind: Error, Message: err.Error()}}
	}

	status := c.checkOnce(ctx, u)

	if (status.Kind == Failed || status.Kind == Error) && c.fallback != nil && u.Host() == "github.com" {
		if owner, repo, ok := github.OwnerRepo(u.String()); ok {
			if exists, err := c.fallback.CheckRepoExists(ctx, owner, repo); err == nil && exists {
				status = Status{Kind: Ok, Code: http.StatusOK}
			}
		}
	}

	return Response{URI: u, Status: status}
}

// limiterFor returns the per-host limiter, creating it on first use. Ten
// requests per second per host keeps a long run polite without slowing a
// scan that spreads across many hosts. The Client is owned by one worker,
// so the map needs no locking.
func (c *Client) limiterFor(host string) *rate.Limiter {
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(10), 10)
		c.limiters[host] = l
	}
	return l
}

func (c *Client) checkOnce(ctx context.Context, u uri.URI) Status {
	c.logger.Debug("checking url", zap.String("url", u.String()), zap.String("method", c.method))

	req, err := http.NewRequestWithContext(ctx, c.method, u.String(), nil)
	if err != nil {
		return Status{Kind: Error, Message: err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.basicAuthUser != "" {
		token := base64.StdEncoding.EncodeToString([]byte(c.basicAuthUser + ":" + c.basicAuthPass))
		req.Header.Set("Authorization", "Basic "+token)
	}
	// Custom headers overlay last, overriding anything set above.
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// When CheckRedirect rejects a hop, http.Client still returns the
		// triggering redirect response (body already closed) alongside the
		// wrapped error, so the terminal redirect code is still available.
		if errors.Is(err, errRedirectsExhausted) {
			code := 0
			if resp != nil {
				code = resp.StatusCode
			}
			return Status{Kind: Redirected, Code: code}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Status{Kind: Timeout}
		}
		return Status{Kind: Error, Message: err.Error()}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	if c.accepted != nil && c.accepted[code] {
		return Status{Kind: Ok, Code: code}
	}
	switch {
	case code >= 200 && code < 300:
		return Status{Kind: Ok, Code: code}
	case code >= 300 && code < 400:
		// Reached here only if Go's own client returned a 3xx response
		// without following it (e.g. a 304, or a redirect with no
		// Location header); an exhausted redirect limit is handled above.
		return Status{Kind: Redirected, Code: code}
	default:
		return Status{Kind: Failed, Code: code}
	}
}

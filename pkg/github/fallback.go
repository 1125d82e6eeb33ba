// Package github implements the one GitHub-specific behavior the checker
// needs: confirming a repository still exists through the authenticated API
// when a direct HTTP request to github.com came back Failed or Error.
// Direct requests to github.com are heavily rate-limited and occasionally
// return spurious 429s or 5xxs for pages that are perfectly reachable in a
// browser; the authenticated REST API is a politer path for the one check
// that matters here.
package github

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

var repoURLPattern = regexp.MustCompile(`(?i)^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?(?:[/#?].*)?$`)

// Fallback confirms repository existence via the GitHub REST API.
type Fallback struct {
	client *github.Client
}

// NewFallback builds a Fallback authenticated with token. An empty token
// still works, subject to GitHub's much stricter unauthenticated rate
// limit.
func NewFallback(ctx context.Context, token string) *Fallback {
	if token == "" {
		return &Fallback{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Fallback{client: github.NewClient(tc)}
}

// OwnerRepo extracts the owner and repository name from a github.com URL.
// ok is false when rawURL isn't shaped like a repository URL.
func OwnerRepo(rawURL string) (owner, repo string, ok bool) {
	m := repoURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// CheckRepoExists reports whether owner/repo exists and is visible with the
// Fallback's credentials.
func (f *Fallback) CheckRepoExists(ctx context.Context, owner, repo string) (bool, error) {
	_, resp, err := f.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("github: get repo %s/%s: %w", owner, repo, err)
	}
	return true, nil
}

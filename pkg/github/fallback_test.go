package github_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-ko/link-validator/pkg/github"
)

func TestOwnerRepoExtractsFromRepoURL(t *testing.T) {
	owner, repo, ok := github.OwnerRepo("https://github.com/your-ko/link-validator")
	assert.True(t, ok)
	assert.Equal(t, "your-ko", owner)
	assert.Equal(t, "link-validator", repo)
}

func TestOwnerRepoHandlesSubpaths(t *testing.T) {
	owner, repo, ok := github.OwnerRepo("https://github.com/your-ko/link-validator/blob/main/README.md")
	assert.True(t, ok)
	assert.Equal(t, "your-ko", owner)
	assert.Equal(t, "link-validator", repo)
}

func TestOwnerRepoRejectsNonGitHubURL(t *testing.T) {
	_, _, ok := github.OwnerRepo("https://example.com/your-ko/link-validator")
	assert.False(t, ok)
}

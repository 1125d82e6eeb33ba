package exclude_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-ko/link-validator/pkg/exclude"
	"github.com/your-ko/link-validator/pkg/uri"
)

func website(t *testing.T, raw string) uri.URI {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return uri.NewWebsite(u)
}

func TestSchemeMismatchExcludes(t *testing.T) {
	p, err := exclude.New(exclude.Options{Scheme: "https"})
	require.NoError(t, err)

	assert.True(t, p.Excluded(context.Background(), website(t, "http://example.com")))
	assert.False(t, p.Excluded(context.Background(), website(t, "https://example.com")))
}

func TestEmptyIncludeAllowsEverything(t *testing.T) {
	p, err := exclude.New(exclude.Options{})
	require.NoError(t, err)

	assert.False(t, p.Excluded(context.Background(), website(t, "https://example.com/anything")))
}

func TestIncludeListMissExcludes(t *testing.T) {
	p, err := exclude.New(exclude.Options{Include: []string{`^https://allowed\.example$`}})
	require.NoError(t, err)

	assert.True(t, p.Excluded(context.Background(), website(t, "https://other.example")))
	assert.False(t, p.Excluded(context.Background(), website(t, "https://allowed.example")))
}

func TestExcludeListHit(t *testing.T) {
	p, err := exclude.New(exclude.Options{Exclude: []string{`blocked\.example`}})
	require.NoError(t, err)

	assert.True(t, p.Excluded(context.Background(), website(t, "https://blocked.example/x")))
}

func TestLoopbackAddressExcludedByIP(t *testing.T) {
	p, err := exclude.New(exclude.Options{ExcludeLoopback: true})
	require.NoError(t, err)

	assert.True(t, p.Excluded(context.Background(), website(t, "http://127.0.0.1:8080")))
}

func TestPrivateAddressNotExcludedWhenFlagUnset(t *testing.T) {
	p, err := exclude.New(exclude.Options{})
	require.NoError(t, err)

	assert.False(t, p.Excluded(context.Background(), website(t, "http://10.0.0.1")))
}

func TestMailNeverExcludedByAddressPolicy(t *testing.T) {
	p, err := exclude.New(exclude.Options{ExcludeAllPrivate: true})
	require.NoError(t, err)

	assert.False(t, p.Excluded(context.Background(), uri.NewMail("person@example.com")))
}

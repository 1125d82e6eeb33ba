package extract_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-ko/link-validator/pkg/extract"
	"github.com/your-ko/link-validator/pkg/uri"
)

func keys(s uri.Set) map[string]bool {
	out := make(map[string]bool, len(s))
	for _, u := range s {
		out[u.String()] = true
	}
	return out
}

func TestExtractMarkdownInlineLink(t *testing.T) {
	content := []byte("See the [docs](https://example.com/docs) for more.")
	set, err := extract.Extract(content, extract.Markdown, nil)
	require.NoError(t, err)
	assert.True(t, keys(set)["https://example.com/docs"])
}

func TestExtractMarkdownSkipsCodeBlocks(t *testing.T) {
	content := []byte("```\nhttps://example.com/in-code\n```\n")
	set, err := extract.Extract(content, extract.Markdown, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestExtractMarkdownAutolink(t *testing.T) {
	content := []byte("Visit <https://example.com/auto> now.")
	set, err := extract.Extract(content, extract.Markdown, nil)
	require.NoError(t, err)
	assert.True(t, keys(set)["https://example.com/auto"])
}

func TestExtractMarkdownRawHTMLBlock(t *testing.T) {
	content := []byte("before\n\n<div><a href=\"https://example.com/raw\">x</a></div>\n\nafter")
	set, err := extract.Extract(content, extract.Markdown, nil)
	require.NoError(t, err)
	assert.True(t, keys(set)["https://example.com/raw"])
}

func TestExtractHTMLAlwaysLinkAttributes(t *testing.T) {
	content := []byte(`<html><body><a href="https://example.com/a">a</a><img src="https://example.com/b.png"></body></html>`)
	set, err := extract.Extract(content, extract.HTML, nil)
	require.NoError(t, err)
	k := keys(set)
	assert.True(t, k["https://example.com/a"])
	assert.True(t, k["https://example.com/b.png"])
}

func TestExtractHTMLMalformedMarkupStillFound(t *testing.T) {
	content := []byte(`<body><a href="https://example.com/unclosed">text`)
	set, err := extract.Extract(content, extract.HTML, nil)
	require.NoError(t, err)
	assert.True(t, keys(set)["https://example.com/unclosed"])
}

func TestExtractHTMLSrcset(t *testing.T) {
	content := []byte(`<img srcset="https://example.com/1x.png 1x, https://example.com/2x.png 2x">`)
	set, err := extract.Extract(content, extract.HTML, nil)
	require.NoError(t, err)
	k := keys(set)
	assert.True(t, k["https://example.com/1x.png"])
	assert.True(t, k["https://example.com/2x.png"])
}

func TestExtractPlaintextBareURLAndEmail(t *testing.T) {
	content := []byte("contact person@example.com or visit https://example.com/page")
	set, err := extract.Extract(content, extract.Plaintext, nil)
	require.NoError(t, err)
	k := keys(set)
	assert.True(t, k["mailto:person@example.com"])
	assert.True(t, k["https://example.com/page"])
}

func TestExtractRelativeLinkJoinedAgainstBase(t *testing.T) {
	base, err := url.Parse("https://example.com/docs/")
	require.NoError(t, err)

	content := []byte("[rel](../guide/install)")
	set, err := extract.Extract(content, extract.Markdown, base)
	require.NoError(t, err)
	assert.True(t, keys(set)["https://example.com/guide/install"])
}

func TestExtractMarkdownMixedAbsoluteAndRelative(t *testing.T) {
	base, err := url.Parse("https://github.com/wgalyen/kimchi/")
	require.NoError(t, err)

	content := []byte("See [example](https://mechanikadesign.com) and [rel](relative_link)")
	set, err := extract.Extract(content, extract.Markdown, base)
	require.NoError(t, err)

	k := keys(set)
	assert.True(t, k["https://mechanikadesign.com"])
	assert.True(t, k["https://github.com/wgalyen/kimchi/relative_link"])
	assert.Len(t, set, 2)
}

func TestExtractPlaintextMixedURLsAndMail(t *testing.T) {
	content := []byte("https://a.com and https://b.com/x?y=1 at test@example.com")
	set, err := extract.Extract(content, extract.Plaintext, nil)
	require.NoError(t, err)

	k := keys(set)
	assert.True(t, k["https://a.com"])
	assert.True(t, k["https://b.com/x?y=1"])
	assert.True(t, k["mailto:test@example.com"])
}

func TestExtractAnchorOnlyLinkDropped(t *testing.T) {
	content := []byte("[top](#top)")
	set, err := extract.Extract(content, extract.Markdown, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

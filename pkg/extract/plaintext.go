package extract

import (
	"regexp"
	"sync"

	hqurl "github.com/hueristiq/hq-go-url/extractor"
)

var (
	plaintextRegexOnce sync.Once
	plaintextRegex     *regexp.Regexp
)

// plaintextPattern lazily compiles the linkify-style extractor used to find
// bare URLs, hostnames, and email addresses inside unstructured text. It
// requires a host component so stray punctuation and code identifiers
// ("a.b.c") are not treated as links, matching the "bare URLs and email
// addresses" wording for plaintext scanning.
func plaintextPattern() *regexp.Regexp {
	plaintextRegexOnce.Do(func() {
		plaintextRegex = hqurl.New(hqurl.WithHost()).CompileRegex()
	})
	return plaintextRegex
}

// extractPlaintext returns every raw candidate token found in freeform text.
// Classification into Website/Mail/local-path happens later, in normalize.go.
func extractPlaintext(text string) []string {
	return plaintextPattern().FindAllString(text, -1)
}

// Package extract discovers hyperlinks inside Markdown, HTML, and plaintext
// content and normalizes them into a deduplicated uri.Set.
package extract

import (
	"fmt"
	"net/url"

	"github.com/your-ko/link-validator/pkg/uri"
)

// Extract dispatches content to the extractor matching fileType and returns
// every Website/Mail URI found, normalized and deduplicated. base, when
// non-nil, is used to resolve relative references that aren't found to
// already exist as a local file.
func Extract(content []byte, fileType FileType, base *url.URL) (uri.Set, error) {
	switch fileType {
	case Markdown:
		return extractMarkdown(content, base)
	case HTML:
		return extractHTML(content, base)
	case Plaintext:
		return normalizeCandidates(extractPlaintext(string(content)), base), nil
	default:
		return nil, fmt.Errorf("extract: unknown file type %v", fileType)
	}
}

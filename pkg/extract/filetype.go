package extract

import (
	"path/filepath"
	"strings"
)

// FileType selects which extractor handles a piece of content.
type FileType int

const (
	Plaintext FileType = iota
	Markdown
	HTML
)

func (t FileType) String() string {
	switch t {
	case Markdown:
		return "markdown"
	case HTML:
		return "html"
	default:
		return "plaintext"
	}
}

// DetectFileType infers a FileType from a file extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return Markdown
	case ".html", ".htm", ".xhtml":
		return HTML
	default:
		return Plaintext
	}
}

// DetectFileTypeFromContentType infers a FileType from an HTTP response's
// Content-Type header, falling back to Plaintext when the media type is
// unrecognized.
func DetectFileTypeFromContentType(contentType string) FileType {
	mediaType := contentType
	if i := strings.IndexByte(contentType, ';'); i != -1 {
		mediaType = contentType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "text/html", "application/xhtml+xml":
		return HTML
	case "text/markdown", "text/x-markdown":
		return Markdown
	default:
		return Plaintext
	}
}

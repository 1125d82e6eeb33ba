// Package collector resolves the set of Inputs a run was given (files,
// globs, remote URLs, stdin, or literal strings) into one deduplicated set
// of the links the extract package finds in their content.
package collector

import "github.com/your-ko/link-validator/pkg/extract"

// Kind identifies which of the five input shapes an Input represents.
type Kind int

const (
	FilePath Kind = iota
	Glob
	RemoteURL
	Stdin
	String
)

func (k Kind) String() string {
	switch k {
	case FilePath:
		return "file"
	case Glob:
		return "glob"
	case RemoteURL:
		return "remote"
	case Stdin:
		return "stdin"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Input is one entry the driver was asked to scan for links.
type Input struct {
	Kind Kind
	// Value holds the file path, glob pattern, or remote URL, depending on
	// Kind. Unused for Stdin and String.
	Value string
	// Content holds the literal content to scan, for Kind == String.
	Content string
	// FileType selects the extractor for Stdin and String inputs (zero
	// value: extract.Plaintext). It is ignored for the other kinds:
	// FilePath and Glob infer the type from each file's extension, and
	// RemoteURL from the response's Content-Type.
	FileType extract.FileType
}

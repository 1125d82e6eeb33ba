package extract

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/your-ko/link-validator/pkg/uri"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
).Parser()

// extractMarkdown walks a CommonMark AST collecting link destinations.
// Code blocks and code spans are skipped entirely; raw HTML blocks and
// inline HTML are handed to the HTML extractor, and inline text runs are
// handed to the plaintext extractor, so a bare URL typed inside a paragraph
// is still found even though goldmark doesn't turn it into a Link node
// unless it recognizes the surrounding syntax.
func extractMarkdown(content []byte, base *url.URL) (uri.Set, error) {
	reader := text.NewReader(content)
	doc := markdownParser.Parse(reader)

	set := uri.NewSet()
	var walkErr error

	inCodeBlock := false
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindCodeSpan:
			inCodeBlock = entering
			return ast.WalkContinue, nil
		}
		if inCodeBlock || !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Link:
			set.Merge(normalizeCandidates([]string{string(node.Destination)}, base))
		case *ast.Image:
			set.Merge(normalizeCandidates([]string{string(node.Destination)}, base))
		case *ast.AutoLink:
			set.Merge(normalizeCandidates([]string{string(node.URL(content))}, base))
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				sub, err := extractHTML(seg.Value(content), base)
				if err != nil {
					walkErr = err
					return ast.WalkStop, err
				}
				set.Merge(sub)
			}
		case *ast.HTMLBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				sub, err := extractHTML(seg.Value(content), base)
				if err != nil {
					walkErr = err
					return ast.WalkStop, err
				}
				set.Merge(sub)
			}
		case *ast.Text:
			if strings.TrimSpace(string(node.Segment.Value(content))) == "" {
				return ast.WalkContinue, nil
			}
			set.Merge(normalizeCandidates(extractPlaintext(string(node.Segment.Value(content))), base))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return set, nil
}

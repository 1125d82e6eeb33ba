package extract

import (
	"net/url"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/your-ko/link-validator/pkg/uri"
)

// isLinkAttr reports whether an attribute always carries a link-shaped
// value. href, src, and cite qualify on any element; data only on
// <object> and onhashchange only on <body>. srcset is handled separately
// since it packs multiple URLs into one attribute.
func isLinkAttr(tag, key string) bool {
	switch key {
	case "href", "src", "cite":
		return true
	case "data":
		return tag == "object"
	case "onhashchange":
		return tag == "body"
	default:
		return false
	}
}

// extractHTML walks a parsed HTML5 document with an explicit node stack
// (never recursion, to keep stack usage bounded on deeply nested markup),
// collecting values from the attributes that always carry links, and
// handing everything else (other attribute values, text nodes, comments)
// to the plaintext extractor.
func extractHTML(content []byte, base *url.URL) (uri.Set, error) {
	doc, err := xhtml.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, err
	}

	set := uri.NewSet()
	stack := []*xhtml.Node{doc}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case xhtml.ElementNode:
			for _, attr := range n.Attr {
				if attr.Key == "srcset" {
					set.Merge(normalizeCandidates(parseSrcset(attr.Val), base))
					continue
				}
				if isLinkAttr(n.Data, attr.Key) {
					set.Merge(normalizeCandidates([]string{attr.Val}, base))
					continue
				}
				set.Merge(normalizeCandidates(extractPlaintext(attr.Val), base))
			}
		case xhtml.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				set.Merge(normalizeCandidates(extractPlaintext(n.Data), base))
			}
		case xhtml.CommentNode:
			set.Merge(normalizeCandidates(extractPlaintext(n.Data), base))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
	}

	return set, nil
}

// parseSrcset splits a srcset attribute ("a.png 1x, b.png 2x") into the
// bare URL candidates, dropping the descriptor portion of each entry.
func parseSrcset(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields := strings.Fields(p)
		if len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

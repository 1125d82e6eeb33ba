package extract

import (
	"net/url"
	"os"
	"strings"

	"github.com/your-ko/link-validator/pkg/uri"
)

// normalizeCandidates turns raw extracted strings into URIs, following the
// four-step normalization: an already-absolute URL becomes a Website; a
// string shaped like an address (contains '@', or uses the mailto: scheme)
// becomes a Mail; a relative reference that does not resolve to an existing
// local filesystem path is joined against base and becomes a Website;
// everything else — anchors, internal links, paths that do exist on disk —
// is silently dropped.
func normalizeCandidates(raws []string, base *url.URL) uri.Set {
	set := uri.NewSet()
	for _, raw := range raws {
		if u, ok := normalizeOne(raw, base); ok {
			set.Add(u)
		}
	}
	return set
}

func normalizeOne(raw string, base *url.URL) (uri.URI, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return uri.URI{}, false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return uri.URI{}, false
	}

	if parsed.Scheme == "mailto" {
		addr := parsed.Opaque
		if addr == "" {
			addr = parsed.Path
		}
		if addr == "" {
			return uri.URI{}, false
		}
		return uri.NewMail(addr), true
	}

	if parsed.IsAbs() && parsed.Host != "" {
		return uri.NewWebsite(parsed), true
	}

	// Protocol-relative reference ("//example.com/x"): adopt the base's
	// scheme, or default to https when extracting without one.
	if parsed.Scheme == "" && parsed.Host != "" {
		scheme := "https"
		if base != nil && base.Scheme != "" {
			scheme = base.Scheme
		}
		resolved := *parsed
		resolved.Scheme = scheme
		return uri.NewWebsite(&resolved), true
	}

	if looksLikeMail(raw) {
		return uri.NewMail(raw), true
	}

	if base == nil {
		return uri.URI{}, false
	}

	if existsLocally(raw) {
		return uri.URI{}, false
	}

	return uri.NewWebsite(base.ResolveReference(parsed)), true
}

// looksLikeMail is a conservative check for bare "name@host" addresses that
// were not already caught by the mailto: scheme or an absolute URL parse.
func looksLikeMail(raw string) bool {
	if strings.ContainsAny(raw, " \t\n/") {
		return false
	}
	at := strings.IndexByte(raw, '@')
	return at > 0 && at < len(raw)-1
}

func existsLocally(raw string) bool {
	path := raw
	if i := strings.IndexByte(path, '#'); i != -1 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "./")
	if path == "" {
		return true // fragment-only reference to the current document
	}
	_, err := os.Stat(path)
	return err == nil
}

package checker

import "github.com/your-ko/link-validator/pkg/uri"

// StatusKind is the tagged outcome of checking a single URI.
type StatusKind int

const (
	// Ok means the resource responded with a 2xx code, or with a code the
	// run's Config explicitly marked as accepted.
	Ok StatusKind = iota
	// Redirected means every redirect the client was willing to follow was
	// exhausted without reaching a non-3xx response.
	Redirected
	// Failed means the server responded, but with a code outside 2xx and
	// not in the accepted set.
	Failed
	// Error means the request could not be completed at all (DNS failure,
	// connection refused, TLS error, and so on).
	Error
	// Timeout means the request did not complete within the configured
	// timeout.
	Timeout
	// Excluded means the URI was never sent: it matched the exclusion
	// policy, or it is a Mail URI (mail delivery is never probed).
	Excluded
)

func (k StatusKind) String() string {
	switch k {
	case Ok:
		return "ok"
	case Redirected:
		return "redirected"
	case Failed:
		return "failed"
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Status carries the StatusKind plus whatever detail is relevant to it: an
// HTTP status code for Ok/Redirected/Failed, or a message for Error.
type Status struct {
	Kind    StatusKind
	Code    int
	Message string
}

func (s Status) IsSuccess() bool { return s.Kind == Ok }

// Response pairs a checked URI with the Status it resolved to.
type Response struct {
	URI    uri.URI
	Status Status
}

// Package stats implements the single-writer response aggregator: per-
// status-kind counters plus per-URI drill-down lists for failed, error,
// timeout, excluded, and ok (including redirected) responses.
package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/your-ko/link-validator/pkg/checker"
)

// Entry is one drill-down record: a checked URI plus whatever detail its
// Status carried.
type Entry struct {
	URI        string `json:"uri"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Stats tallies checker.Response values as they arrive. It is owned by a
// single consumer goroutine (the driver's response-draining loop); the
// mutex exists only so tests and any secondary reader can safely inspect
// it concurrently with that one writer.
type Stats struct {
	mu sync.Mutex

	counts   map[checker.StatusKind]int
	failed   []Entry
	errors   []Entry
	timeout  []Entry
	excluded []Entry
	ok       []Entry
}

// New returns an empty Stats, ready to record responses.
func New() *Stats {
	return &Stats{counts: make(map[checker.StatusKind]int)}
}

// Record folds one Response into the aggregate. Safe to call from the
// single consumer goroutine; additional callers must not call it
// concurrently with each other (only with readers).
func (s *Stats) Record(resp checker.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[resp.Status.Kind]++
	entry := Entry{URI: resp.URI.String(), StatusCode: resp.Status.Code, Error: resp.Status.Message}
	switch resp.Status.Kind {
	case checker.Failed:
		s.failed = append(s.failed, entry)
	case checker.Error:
		s.errors = append(s.errors, entry)
	case checker.Timeout:
		s.timeout = append(s.timeout, entry)
	case checker.Excluded:
		s.excluded = append(s.excluded, entry)
	case checker.Ok, checker.Redirected:
		s.ok = append(s.ok, entry)
	}
}

// Count returns the number of responses recorded with the given kind.
func (s *Stats) Count(kind checker.StatusKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// Total returns the number of responses recorded overall.
func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// IsSuccess reports whether the run as a whole succeeded: no Failed,
// Error, or Timeout entries. Accepted-code overrides already promoted any
// such code to Ok before Record ever saw it (see checker.Client), so this
// predicate never needs to re-consult the accepted set.
func (s *Stats) IsSuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failed) == 0 && len(s.errors) == 0 && len(s.timeout) == 0
}

// jsonView is the public JSON schema: counts per kind plus the per-kind
// drill-down arrays.
type jsonView struct {
	Counts   map[string]int `json:"counts"`
	Ok       []Entry        `json:"ok,omitempty"`
	Failed   []Entry        `json:"failed,omitempty"`
	Errors   []Entry        `json:"errors,omitempty"`
	Timeout  []Entry        `json:"timeout,omitempty"`
	Excluded []Entry        `json:"excluded,omitempty"`
}

func (s *Stats) snapshot() jsonView {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int, len(s.counts))
	for kind, n := range s.counts {
		counts[kind.String()] = n
	}
	return jsonView{
		Counts:   counts,
		Ok:       append([]Entry(nil), s.ok...),
		Failed:   append([]Entry(nil), s.failed...),
		Errors:   append([]Entry(nil), s.errors...),
		Timeout:  append([]Entry(nil), s.timeout...),
		Excluded: append([]Entry(nil), s.excluded...),
	}
}

// MarshalJSON implements json.Marshaler: counts per status kind plus the
// per-kind drill-down arrays.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.snapshot())
}

// String implements fmt.Stringer, producing a human-readable summary:
// one line per status kind, sorted for deterministic rendering, followed
// by the failing entries.
func (s *Stats) String() string {
	snap := s.snapshot()

	var buf bytes.Buffer
	kinds := make([]string, 0, len(snap.Counts))
	for k := range snap.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&buf, "%-10s %d\n", k, snap.Counts[k])
	}

	printEntries := func(label string, entries []Entry) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&buf, "\n%s:\n", label)
		for _, e := range entries {
			if e.Error != "" {
				fmt.Fprintf(&buf, "  %s: %s\n", e.URI, e.Error)
			} else {
				fmt.Fprintf(&buf, "  %s: %d\n", e.URI, e.StatusCode)
			}
		}
	}
	printEntries("failed", snap.Failed)
	printEntries("errors", snap.Errors)
	printEntries("timeout", snap.Timeout)

	return buf.String()
}

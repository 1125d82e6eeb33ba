// Package exclude implements the include/exclude filtering policy applied to
// every URI before it is checked: scheme allow-listing, include/exclude
// regex lists, and private-address classification.
package exclude

import (
	"context"
	"net"
	"net/netip"
	"regexp"
	"sync"

	"github.com/your-ko/link-validator/pkg/uri"
)

// Options configures a Policy. A nil or empty Include list means "include
// everything"; Exclude is only consulted once Include has matched.
type Options struct {
	Scheme            string
	Include           []string
	Exclude           []string
	ExcludeAllPrivate bool
	ExcludePrivate    bool
	ExcludeLinkLocal  bool
	ExcludeLoopback   bool
}

// Policy decides whether a URI should be skipped rather than checked.
type Policy struct {
	scheme            string
	include           []*regexp.Regexp
	exclude           []*regexp.Regexp
	excludeAllPrivate bool
	excludePrivate    bool
	excludeLinkLocal  bool
	excludeLoopback   bool
	resolver          *dnsCache
}

// New compiles the include/exclude patterns and returns a ready Policy.
func New(opts Options) (*Policy, error) {
	p := &Policy{
		scheme:            opts.Scheme,
		excludeAllPrivate: opts.ExcludeAllPrivate,
		excludePrivate:    opts.ExcludePrivate,
		excludeLinkLocal:  opts.ExcludeLinkLocal,
		excludeLoopback:   opts.ExcludeLoopback,
		resolver:          newDNSCache(),
	}
	for _, pat := range opts.Include {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		p.include = append(p.include, re)
	}
	for _, pat := range opts.Exclude {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		p.exclude = append(p.exclude, re)
	}
	return p, nil
}

// Excluded reports whether u should be skipped instead of checked. The
// precedence order is: scheme mismatch, then include-list miss, then
// exclude-list hit, then address-class hit. Mail URIs are never excluded by
// address class (they have no resolvable host in this sense); callers treat
// every Mail URI as Excluded at the checker level instead.
func (p *Policy) Excluded(ctx context.Context, u uri.URI) bool {
	if u.Kind() != uri.Website {
		return false
	}
	if p.scheme != "" && u.Scheme() != p.scheme {
		return true
	}
	target := u.String()
	if len(p.include) > 0 {
		matched := false
		for _, re := range p.include {
			if re.MatchString(target) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
	}
	for _, re := range p.exclude {
		if re.MatchString(target) {
			return true
		}
	}
	if p.excludeAllPrivate || p.excludePrivate || p.excludeLinkLocal || p.excludeLoopback {
		return p.excludedByAddress(ctx, u.Host())
	}
	return false
}

func (p *Policy) excludedByAddress(ctx context.Context, host string) bool {
	addrs, err := p.resolver.lookup(ctx, host)
	if err != nil || len(addrs) == 0 {
		// Unresolvable hosts are left to the checker to fail naturally;
		// the exclusion policy only filters addresses it can classify.
		return false
	}
	for _, addr := range addrs {
		if p.excludeLoopback && addr.IsLoopback() {
			return true
		}
		if p.excludeLinkLocal && (addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast()) {
			return true
		}
		if (p.excludePrivate || p.excludeAllPrivate) && addr.IsPrivate() {
			return true
		}
		if p.excludeAllPrivate && (addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsPrivate()) {
			return true
		}
	}
	return false
}

// dnsCache resolves hostnames to IP addresses once and remembers the
// answer; entries are insert-once so a mutex is enough, contention is
// negligible for the lookup volume a link validator produces.
type dnsCache struct {
	mu    sync.Mutex
	cache map[string][]netip.Addr
}

func newDNSCache() *dnsCache {
	return &dnsCache{cache: make(map[string][]netip.Addr)}
}

func (c *dnsCache) lookup(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	c.mu.Lock()
	if addrs, ok := c.cache[host]; ok {
		c.mu.Unlock()
		return addrs, nil
	}
	c.mu.Unlock()

	ipAddrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	addrs := make([]netip.Addr, 0, len(ipAddrs))
	for _, ip := range ipAddrs {
		if a, ok := netip.AddrFromSlice(ip.IP); ok {
			addrs = append(addrs, a.Unmap())
		}
	}

	c.mu.Lock()
	c.cache[host] = addrs
	c.mu.Unlock()
	return addrs, nil
}

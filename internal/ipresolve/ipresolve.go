// Package ipresolve extracts the client address from a request that may have
// passed through CDNs, reverse proxies and load balancers.
//
// Forwarding headers are client-controlled unless a trusted proxy overwrites
// them, so the resolved address is a best-effort signal: callers treat an
// empty result as "unknown" rather than as a reason to block.
package ipresolve

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Headers is the lookup order used by Resolve. The first header present that
// yields a valid address wins; for comma-separated chains the left-most
// (client-closest) entry is used.
var Headers = []string{
	"CF-Connecting-IP",    // Cloudflare
	"X-Real-IP",           // nginx real_ip
	"X-Forwarded-For",     // de-facto standard
	"X-Forwarded",         // generic
	"X-Cluster-Client-IP", // cluster load balancers
	"Forwarded-For",
	"Forwarded", // RFC 7239
	"Client-IP",
}

// proxyHeaders are the headers whose mere presence indicates a proxy hop.
var proxyHeaders = []string{
	"X-Forwarded-For",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
	"Via",
	"X-Coming-From",
	"Coming-From",
}

// Resolver resolves client addresses. The zero value trusts only RemoteAddr.
type Resolver struct {
	// TrustHeaders enables the forwarding-header walk.
	TrustHeaders bool
}

// Resolve returns the best client address for r, or "" when nothing valid
// was found.
func (rv Resolver) Resolve(r *http.Request) string {
	if r == nil {
		return ""
	}
	if rv.TrustHeaders {
		for _, h := range Headers {
			v := strings.TrimSpace(r.Header.Get(h))
			if v == "" {
				continue
			}
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if ip := Sanitize(v); ip != "" {
				return ip
			}
		}
	}
	return Sanitize(r.RemoteAddr)
}

// IsBehindProxy reports whether any forwarding header is present.
func IsBehindProxy(h http.Header) bool {
	for _, k := range proxyHeaders {
		if strings.TrimSpace(h.Get(k)) != "" {
			return true
		}
	}
	return false
}

// ProxyChain lists the valid X-Forwarded-For hops followed by the direct peer
// address (deduplicated). It is meant for diagnostics only.
func ProxyChain(r *http.Request) []string {
	var chain []string
	seen := map[string]struct{}{}
	add := func(raw string) {
		ip := Sanitize(raw)
		if ip == "" {
			return
		}
		if _, dup := seen[ip]; dup {
			return
		}
		seen[ip] = struct{}{}
		chain = append(chain, ip)
	}
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		add(hop)
	}
	add(r.RemoteAddr)
	return chain
}

// Sanitize normalizes a header or RemoteAddr value into a canonical address
// string. It understands RFC 7239 "for=" pairs, quoted values, bracketed
// IPv6 and host:port forms. Invalid input yields "".
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// RFC 7239: for=192.0.2.60;proto=http;by=203.0.113.43
	if strings.Contains(s, "=") {
		found := false
		for _, part := range strings.Split(s, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && strings.EqualFold(k, "for") {
				s, found = v, true
				break
			}
		}
		if !found {
			return ""
		}
	}
	s = strings.Trim(strings.TrimSpace(s), `"`)

	if addr, err := netip.ParseAddr(strings.Trim(s, "[]")); err == nil {
		return canonical(addr)
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		if addr, err := netip.ParseAddr(host); err == nil {
			return canonical(addr)
		}
	}
	return ""
}

func canonical(a netip.Addr) string {
	return a.Unmap().WithZone("").String()
}

// IsValid reports whether ip parses as IPv4 or IPv6.
func IsValid(ip string) bool {
	_, err := netip.ParseAddr(ip)
	return err == nil
}

// Version returns 4, 6, or 0 for invalid input.
func Version(ip string) int {
	a, err := netip.ParseAddr(ip)
	switch {
	case err != nil:
		return 0
	case a.Unmap().Is4():
		return 4
	}
	return 6
}

// IsPrivate reports whether ip is in a private, loopback, link-local or
// otherwise non-routable range.
func IsPrivate(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	return a.IsPrivate() || a.IsLoopback() || a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() || a.IsUnspecified() || a.IsMulticast()
}

// InCIDR reports whether ip falls inside cidr. Mixed families never match.
func InCIDR(ip, cidr string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	p, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return false
	}
	return p.Masked().Contains(a.Unmap())
}

// Matches reports whether ip matches pattern, which may be an exact address,
// a CIDR prefix ("10.0.0.0/8"), or an IPv4 wildcard ("192.168.1.*").
func Matches(ip, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if ip == "" || pattern == "" {
		return false
	}
	switch {
	case strings.Contains(pattern, "/"):
		return InCIDR(ip, pattern)
	case strings.Contains(pattern, "*"):
		return matchWildcard(ip, pattern)
	}
	a, err1 := netip.ParseAddr(ip)
	b, err2 := netip.ParseAddr(pattern)
	return err1 == nil && err2 == nil && a.Unmap() == b.Unmap()
}

func matchWildcard(ip, pattern string) bool {
	if Version(ip) != 4 {
		return false
	}
	got := strings.Split(canonical(netip.MustParseAddr(ip)), ".")
	want := strings.Split(pattern, ".")
	if len(want) != 4 {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}

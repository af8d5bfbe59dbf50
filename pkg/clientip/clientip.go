package clientip

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ErrInvalidPrefix is returned when an allowlist entry is neither an IP nor a CIDR.
var ErrInvalidPrefix = errors.New("clientip: invalid address or prefix")

// forwardHeaders are consulted in order when the receiver sits behind a proxy.
var forwardHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// FromRequest returns the address that sent r. Proxy headers are read only
// when trustProxy is set, otherwise RemoteAddr is used as is.
func FromRequest(r *http.Request, trustProxy bool) (netip.Addr, bool) {
	if trustProxy {
		for _, h := range forwardHeaders {
			v := r.Header.Get(h)
			if v == "" {
				continue
			}
			// X-Forwarded-For lists the original client first.
			first, _, _ := strings.Cut(v, ",")
			if addr, ok := parseAddr(first); ok {
				return addr, true
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return parseAddr(host)
}

func parseAddr(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// Allowlist is a set of networks permitted to deliver webhooks.
// An empty list allows every address.
type Allowlist []netip.Prefix

// ParseAllowlist accepts single addresses ("203.0.113.7") and CIDR
// prefixes ("203.0.113.0/24", "2001:db8::/32").
func ParseAllowlist(entries ...string) (Allowlist, error) {
	list := make(Allowlist, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, e)
			}
			list = append(list, p.Masked())
			continue
		}
		addr, ok := parseAddr(e)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, e)
		}
		list = append(list, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return list, nil
}

// Allows reports whether addr belongs to one of the networks.
func (a Allowlist) Allows(addr netip.Addr) bool {
	if len(a) == 0 {
		return true
	}
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range a {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

package middleware

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v3"
)

const originKey = "origin"

// OriginMiddleware resolves the network origin a request is throttled under.
type OriginMiddleware struct {
	header  string
	proxies []*net.IPNet
}

// NewOriginMiddleware creates an origin resolver. When header is non-empty
// (e.g. "X-Forwarded-For") and the peer is a trusted proxy, the origin is the
// right-most address in that header that is not itself a trusted proxy.
// An empty proxy list trusts every peer. Entries are IPs or CIDRs; invalid
// entries are skipped.
func NewOriginMiddleware(header string, trustedProxies []string) *OriginMiddleware {
	m := &OriginMiddleware{header: header}
	for _, p := range trustedProxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil && ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		if _, ipNet, err := net.ParseCIDR(p); err == nil {
			m.proxies = append(m.proxies, ipNet)
		}
	}
	return m
}

// Handle stores the resolved origin in the request locals.
func (m *OriginMiddleware) Handle(c fiber.Ctx) error {
	c.Locals(originKey, m.resolve(c))
	return c.Next()
}

func (m *OriginMiddleware) resolve(c fiber.Ctx) string {
	peer := c.IP()
	if m.header == "" || !m.trusted(peer, true) {
		return peer
	}

	hops := strings.Split(c.Get(m.header), ",")
	origin := ""
	// Walk from the nearest hop; entries left of the first untrusted
	// address are client-supplied.
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		origin = hop
		if !m.trusted(hop, false) {
			break
		}
	}
	if origin == "" {
		return peer
	}
	return origin
}

// trusted reports whether addr is a configured proxy. With no proxies
// configured only the socket peer counts as trusted.
func (m *OriginMiddleware) trusted(addr string, isPeer bool) bool {
	if len(m.proxies) == 0 {
		return isPeer
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, ipNet := range m.proxies {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// Origin returns the origin resolved for this request, falling back to the
// peer address when the middleware did not run.
func Origin(c fiber.Ctx) string {
	if origin, ok := c.Locals(originKey).(string); ok && origin != "" {
		return origin
	}
	return c.IP()
}

package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/sirupsen/logrus"
)

// Middleware resolves the caller of every request
type Middleware struct {
	secret  []byte
	proxies []netip.Prefix
}

// NewMiddleware creates a new auth middleware for tokens signed with secret.
// X-Forwarded-For is only read from requests sent by one of trustedProxies
// (addresses or CIDR ranges).
func NewMiddleware(secret string, trustedProxies ...string) *Middleware {
	m := &Middleware{secret: []byte(secret)}
	for _, entry := range trustedProxies {
		prefix, err := ParseProxy(entry)
		if err != nil {
			logrus.Warnf("Ignoring trusted proxy %q: %v", entry, err)
			continue
		}
		m.proxies = append(m.proxies, prefix)
	}
	return m
}

// ParseProxy parses a trusted proxy given as an address or a CIDR range
func ParseProxy(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		return prefix.Masked(), err
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Authenticate puts the caller in the request context. Requests without a bearer
// token are anonymous free-tier callers keyed by client address; a token that is
// present but invalid is rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			caller := models.Caller{ID: "anon:" + m.clientIP(r), Role: RoleUser, Tier: models.TierFree}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Bearer token required")
			return
		}

		claims, err := ParseToken(m.secret, strings.TrimSpace(tokenString))
		if err != nil {
			logrus.WithField("path", r.URL.Path).Debugf("Rejected token: %v", err)
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), claims.Caller())))
	})
}

// RequireAdmin rejects callers without the admin role. It must run after
// Authenticate.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok || caller.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}
		next(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// clientIP is the peer address of the request. Behind a trusted proxy it is the
// right-most X-Forwarded-For entry that is not itself a trusted proxy.
func (m *Middleware) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !m.trusted(host) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !m.trusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (m *Middleware) trusted(ip string) bool {
	if len(m.proxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range m.proxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

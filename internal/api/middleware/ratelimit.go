package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/repository/redis"
)

// RateLimitMiddleware applies the shared per-user budget kept in Redis
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting based on the principal's ID
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), "user:"+userID.String())
		if err != nil {
			// fail open
			log.Warn().Err(err).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.rateLimiter.Limit(), 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type peerKey struct{}

// PeerAddr records the socket peer address before chi's RealIP rewrites
// RemoteAddr from client-supplied headers. It must run ahead of RealIP.
func PeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)))
	})
}

// ParseTrustedProxies accepts bare IPs and CIDR prefixes
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// minBucketTTL is how long an idle IP keeps its bucket at the least
const minBucketTTL = 15 * time.Minute

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP in process memory.
// Buckets idle longer than ttl are swept on access.
type IPRateLimiter struct {
	buckets   map[string]*ipBucket
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	trusted   []netip.Prefix
	now       func() time.Time
}

// NewIPRateLimiter allows requestsPerMinute sustained requests per IP with the
// given burst. Forwarding headers are honoured only when the socket peer falls
// inside one of trustedProxies.
func NewIPRateLimiter(requestsPerMinute, burst int, trustedProxies ...netip.Prefix) *IPRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	interval := time.Minute / time.Duration(requestsPerMinute)

	// a bucket idle this long has refilled, so dropping it loses nothing
	ttl := interval * time.Duration(burst)
	if ttl < minBucketTTL {
		ttl = minBucketTTL
	}

	return &IPRateLimiter{
		buckets: make(map[string]*ipBucket),
		rate:    rate.Every(interval),
		burst:   burst,
		ttl:     ttl,
		trusted: trustedProxies,
		now:     time.Now,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.ttl {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

func hostOf(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (l *IPRateLimiter) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the socket peer, or the forwarded client address when the peer
// is a trusted proxy
func (l *IPRateLimiter) clientIP(r *http.Request) string {
	peer, ok := r.Context().Value(peerKey{}).(string)
	if !ok {
		peer = r.RemoteAddr
	}
	peer = hostOf(peer)
	if l.isTrusted(peer) {
		return hostOf(r.RemoteAddr)
	}
	return peer
}

// Limit rejects requests from an IP whose bucket is empty
func (l *IPRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(l.clientIP(r)).Allow() {
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"diskpanel/internal/logging"
)

// limiterIdleTTL is how long a client's bucket is kept after its last request
const limiterIdleTTL = 10 * time.Minute

// RateLimiter implements token bucket rate limiting per IP. Buckets of idle
// clients expire so the set stays bounded by recent traffic.
type RateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perSecond requests per IP
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return newRateLimiter(perSecond, burst, limiterIdleTTL)
}

func newRateLimiter(perSecond float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(idle, 2*idle),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if item, found := rl.limiters.Get(ip); found {
		limiter := item.(*rate.Limiter)
		rl.limiters.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.SetDefault(ip, limiter)
	return limiter
}

// Len returns the number of tracked clients, including expired ones not yet evicted
func (rl *RateLimiter) Len() int {
	return rl.limiters.ItemCount()
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logging.With("security").Warn().Str("ip", ip).Msg("Rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// IPWhitelist restricts access to listed IPs
type IPWhitelist struct {
	ips map[string]bool
}

// NewIPWhitelist creates a new IP whitelist
func NewIPWhitelist(ips []string) *IPWhitelist {
	wl := &IPWhitelist{
		ips: make(map[string]bool),
	}
	for _, ip := range ips {
		wl.ips[ip] = true
	}
	return wl
}

// IsAllowed checks if an IP is whitelisted
func (wl *IPWhitelist) IsAllowed(ip string) bool {
	// Allow localhost always
	if ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return true
	}

	// If no whitelist configured, allow all
	if len(wl.ips) == 0 {
		return true
	}

	// Strip port from IP if present
	ipOnly, _, _ := net.SplitHostPort(ip)
	if ipOnly == "" {
		ipOnly = ip
	}

	return wl.ips[ipOnly]
}

// IPWhitelistMiddleware enforces IP whitelisting
func IPWhitelistMiddleware(whitelist *IPWhitelist) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !whitelist.IsAllowed(ip) {
			logging.With("security").Warn().Str("ip", ip).Msg("Access denied for non-whitelisted IP")
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request through zerolog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logging.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logging.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// InputValidator validates and sanitizes user input
type InputValidator struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateToken checks if token format is valid
func (iv *InputValidator) ValidateToken(token string) bool {
	// JWT tokens are in format: header.payload.signature
	if len(token) < 20 || len(token) > 4096 {
		return false
	}

	dotCount := 0
	for _, c := range token {
		if c == '.' {
			dotCount++
		}
	}

	return dotCount == 2
}

// ValidateSnapshotID checks that an ID is a canonical UUID
func (iv *InputValidator) ValidateSnapshotID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 15 * time.Minute
	limiterCleanupEvery = 2 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of IP addresses to their rate limiters. Entries idle for longer than
// idleTTL are swept while serving requests, at most once per cleanupEvery.
type rateLimiterStore struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	perMin       int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	return &rateLimiterStore{
		entries:      make(map[string]*limiterEntry),
		perMin:       perMin,
		idleTTL:      limiterIdleTTL,
		cleanupEvery: limiterCleanupEvery,
		lastSweep:    time.Now(),
		now:          time.Now,
	}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.cleanupEvery {
		s.sweepLocked(now)
	}

	if ent, ok := s.entries[ip]; ok {
		ent.lastSeen = now
		return ent.limiter
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
	s.entries[ip] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (s *rateLimiterStore) sweepLocked(now time.Time) {
	cutoff := now.Add(-s.idleTTL)
	for ip, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, ip)
		}
	}
	s.lastSweep = now
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimitMiddleware limits requests per IP address to perMin per minute.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	if perMin <= 0 {
		perMin = 100
	}
	return rateLimit(newRateLimiterStore(perMin))
}

func rateLimit(store *rateLimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

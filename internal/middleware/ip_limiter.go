package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiterEntry tracks a rate limiter and its last use time.
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimit manages connection rate limiters per IP address.
type IPRateLimit struct {
	limiters map[string]*ipLimiterEntry
	mu       sync.RWMutex

	interval time.Duration
	burst    int
}

// NewIPRateLimit allows each IP connectionsPerMinute new connections
// sustained, with the given burst on top.
func NewIPRateLimit(connectionsPerMinute, burst int) *IPRateLimit {
	if connectionsPerMinute <= 0 {
		connectionsPerMinute = 1
	}
	return &IPRateLimit{
		limiters: make(map[string]*ipLimiterEntry),
		interval: time.Minute / time.Duration(connectionsPerMinute),
		burst:    burst,
	}
}

// Allow checks whether an IP may open another connection.
func (iprl *IPRateLimit) Allow(ip string) bool {
	iprl.mu.Lock()
	defer iprl.mu.Unlock()

	entry, exists := iprl.limiters[ip]
	if !exists {
		entry = &ipLimiterEntry{
			limiter:  rate.NewLimiter(rate.Every(iprl.interval), iprl.burst),
			lastSeen: time.Now(),
		}
		iprl.limiters[ip] = entry
	} else {
		entry.lastSeen = time.Now()
	}

	return entry.limiter.Allow()
}

// Cleanup removes IP limiters that haven't been used recently.
func (iprl *IPRateLimit) Cleanup() {
	iprl.mu.Lock()
	defer iprl.mu.Unlock()

	now := time.Now()
	threshold := 1 * time.Hour

	for ip, entry := range iprl.limiters {
		if now.Sub(entry.lastSeen) > threshold {
			delete(iprl.limiters, ip)
		}
	}
}

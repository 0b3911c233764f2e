package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterSet hands out one token bucket per client key and forgets keys that
// have been idle for longer than ttl.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	done     chan struct{}
	once     sync.Once
}

func newLimiterSet(requestsPerMin, burst int, ttl time.Duration) *limiterSet {
	s := &limiterSet{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.rate, s.burst)
		s.limiters[key] = l
	}
	s.lastSeen[key] = time.Now()
	s.mu.Unlock()
	return l.Allow()
}

func (s *limiterSet) cleanupLoop() {
	t := time.NewTicker(s.ttl)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.evict(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *limiterSet) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, seen := range s.lastSeen {
		if now.Sub(seen) > s.ttl {
			delete(s.limiters, k)
			delete(s.lastSeen, k)
		}
	}
}

func (s *limiterSet) close() { s.once.Do(func() { close(s.done) }) }

// middleware rejects clients over their budget with 429.
func (s *limiterSet) middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "rate limit exceeded",
			})
		}
		return c.Next()
	}
}

package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
	"golang.org/x/time/rate"
)

// RateStore keeps a sliding log of hits per key.
type RateStore interface {
	// Allow records a hit for key unless limit hits already fall inside window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type MemoryRateStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{hits: make(map[string][]time.Time), now: time.Now}
}

func (s *MemoryRateStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)
	if now.Sub(s.lastSweep) >= window {
		s.sweep(cutoff)
		s.lastSweep = now
	}

	valid := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= limit {
		s.hits[key] = valid
		return false, nil
	}
	s.hits[key] = append(valid, now)
	return true, nil
}

// sweep drops keys whose newest hit has left the window.
func (s *MemoryRateStore) sweep(cutoff time.Time) {
	for key, log := range s.hits {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}

// slidingLogScript trims the sorted set to the window, then adds the hit when
// there is room. KEYS[1] log, ARGV: now(ms), window(ms), limit, member.
var slidingLogScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return 1
`)

// RedisRateStore shares the sliding log between instances.
type RedisRateStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRateStore(client *redis.Client) *RedisRateStore {
	return &RedisRateStore{client: client, prefix: "ratelimit:", now: time.Now}
}

func (s *RedisRateStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	allowed, err := slidingLogScript.Run(ctx, s.client, []string{s.prefix + key},
		s.now().UnixMilli(), window.Milliseconds(), limit, uuid.NewString()).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// RateLimiter applies one ceiling to anonymous callers (per client IP) and
// another to authenticated callers (per account).
type RateLimiter struct {
	store         RateStore
	anonymous     int
	authenticated int
	window        time.Duration
}

func NewRateLimiter(store RateStore, anonymous, authenticated int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:         store,
		anonymous:     anonymous,
		authenticated: authenticated,
		window:        window,
	}
}

// RateLimit must run after AuthMiddleware.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, limit := "anon:"+c.ClientIP(), rl.anonymous
		if userID, ok := Principal(c); ok {
			key, limit = "user:"+strconv.FormatUint(uint64(userID), 10), rl.authenticated
		}

		allowed, err := rl.store.Allow(c.Request.Context(), key, limit, rl.window)
		if err != nil {
			// fail open while the store is unreachable
			utils.LogError("middlewares", "RateLimit", key, err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			utils.RespondError(c, http.StatusTooManyRequests, services.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

// StrictRateLimiter throttles credential endpoints per client IP with a token
// bucket, on top of the general limit.
type StrictRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	every     time.Duration
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewStrictRateLimiter(every time.Duration, burst int) *StrictRateLimiter {
	return &StrictRateLimiter{
		limiters: make(map[string]*ipLimiter),
		every:    every,
		burst:    burst,
		now:      time.Now,
	}
}

// idleAfter is how long a bucket takes to refill completely. An entry idle
// for longer behaves like a new one and can be dropped.
func (s *StrictRateLimiter) idleAfter() time.Duration {
	return s.every * time.Duration(s.burst)
}

func (s *StrictRateLimiter) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleAfter() {
		for key, l := range s.limiters {
			if now.Sub(l.lastSeen) >= s.idleAfter() {
				delete(s.limiters, key)
			}
		}
		s.lastSweep = now
	}

	l, ok := s.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

func (s *StrictRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.allow(c.ClientIP()) {
			utils.RespondError(c, http.StatusTooManyRequests,
				fmt.Errorf("%w: too many credential attempts", services.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}

package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-user limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter throttles requests per user_id with a token bucket each.
type userLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	users     map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

// newUserLimiter returns a limiter allowing r requests per second with the
// given burst. A non-positive r disables limiting.
func newUserLimiter(r float64, burst int) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limit: rate.Limit(r),
		burst: burst,
		users: make(map[string]*limiterEntry),
		now:   time.Now,
	}
}

func (l *userLimiter) enabled() bool {
	return l != nil && l.limit > 0
}

// reserve takes a token for user. It returns false and the wait until the
// next token when the bucket is empty.
func (l *userLimiter) reserve(user string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.users[user]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[user] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops limiters idle for longer than idleLimiterTTL. Caller holds mu.
func (l *userLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleLimiterTTL {
		return
	}
	l.lastSweep = now
	for user, e := range l.users {
		if now.Sub(e.lastSeen) > idleLimiterTTL {
			delete(l.users, user)
		}
	}
}

func (l *userLimiter) middleware(next http.Handler) http.Handler {
	if !l.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.reserve(r.URL.Query().Get("user_id"))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: detailRateLimited})
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middlewarectx

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
)

const limiterIdleTTL = 30 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserLimiter хранит отдельный token bucket для каждого пользователя.
type UserLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewUserLimiter создаёт ограничитель: perMinute запросов в минуту с запасом burst.
func NewUserLimiter(perMinute float64, burst int) *UserLimiter {
	return &UserLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow сообщает, можно ли пропустить запрос пользователя сейчас.
func (l *UserLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, k)
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware ограничивает частоту запросов по пользователю из контекста,
// а для анонимных запросов по адресу клиента.
func RateLimitMiddleware(limiter *UserLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := UserIDFrom(r.Context())
			if !ok {
				key = r.RemoteAddr
			}
			if !limiter.Allow(key) {
				log.Warn("too many requests", slog.String("key", key), slog.String("path", r.URL.Path))
				response.RenderError(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

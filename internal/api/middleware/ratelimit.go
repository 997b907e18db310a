package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter решает, можно ли пропустить очередной запрос с данным ключом
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает частоту запросов по IP клиента.
// X-Forwarded-For учитывается только при trustProxy (сервис стоит за своим балансировщиком).
// При ошибке лимитера запрос пропускается (fail-open)
func RateLimit(limiter Limiter, trustProxy bool, log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r, trustProxy)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn("RateLimit: limiter error for key=%s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"message":"слишком много запросов"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey ключ лимита по IP. Заголовки от клиента (X-User-ID) не проверены на этом этапе
// и в ключ не попадают
func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
				return "ip:" + ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

// LocalLimiter token bucket на ключ в памяти процесса
type LocalLimiter struct {
	limiters sync.Map // key -> *localEntry
	rps      float64
	burst    int
	now      func() time.Time
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &LocalLimiter{rps: rps, burst: burst, now: time.Now}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.getLimiter(key).Allow(), nil
}

func (l *LocalLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now().UnixNano()
	if v, ok := l.limiters.Load(key); ok {
		entry := v.(*localEntry)
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	entry := &localEntry{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
	entry.lastSeen.Store(now)
	actual, _ := l.limiters.LoadOrStore(key, entry)
	stored := actual.(*localEntry)
	stored.lastSeen.Store(now)
	return stored.limiter
}

// Prune удаляет бакеты, к которым не обращались дольше idle. Возвращает число удаленных
func (l *LocalLimiter) Prune(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	removed := 0
	l.limiters.Range(func(key, value any) bool {
		if value.(*localEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RunJanitor периодически чистит простаивающие бакеты до закрытия stopCh
func (l *LocalLimiter) RunJanitor(stopCh <-chan struct{}, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			l.Prune(idle)
		}
	}
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter fixed-window лимитер в Redis, общий для всех инстансов сервиса
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, fmt.Errorf("RedisLimiter.Allow: %w", err)
	}

	var count int64
	switch v := res.(type) {
	case int64:
		count = v
	case string:
		count, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false, fmt.Errorf("RedisLimiter.Allow: %w", err)
		}
	default:
		return false, fmt.Errorf("RedisLimiter.Allow: unexpected script result type %T", res)
	}

	return count <= int64(l.limit), nil
}

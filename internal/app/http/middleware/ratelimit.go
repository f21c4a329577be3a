package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"mdr-travel/go_backend/internal/logger"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter allows perMinute requests per IP, all of them in a burst.
func NewIPRateLimiter(perMinute int, log *logger.Logger) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if log == nil {
		log = logger.Nop()
	}
	return &IPRateLimiter{
		rate:  rate.Limit(float64(perMinute) / 60),
		burst: perMinute,
		log:   log,
	}
}

func (i *IPRateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := i.limiters.Load(ip); ok {
		return l.(*rate.Limiter)
	}
	l, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return l.(*rate.Limiter)
}

func (i *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !i.limiter(ip).Allow() {
			i.log.WithContext(r.Context()).Warn("rate_limit_exceeded", slog.String("client_ip", ip), slog.String("path", r.URL.Path))
			abort(w, http.StatusTooManyRequests, "Demasiadas solicitudes, intenta en un momento")
			return
		}
		next.ServeHTTP(w, r)
	})
}

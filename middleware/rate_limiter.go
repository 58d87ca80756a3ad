// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/evea/evea_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20}, // 10 requests per second
		blockDuration: 5 * time.Minute,
		now:           time.Now,
		endpointLimits: map[string]endpointLimit{
			// credential and sign-up endpoints
			"/api/auth/login":             {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/google":            {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/forgot-password":   {limit: rate.Every(10 * time.Second), burst: 3},
			"/api/vendor/register/step1":  {limit: rate.Every(500 * time.Millisecond), burst: 5},
			"/api/vendor/register/step2":  {limit: rate.Every(time.Second), burst: 5},
			"/api/vendor/documents/:type": {limit: rate.Every(time.Second), burst: 5},
		},
	}
	return limiter
}

// SetEndpointLimit overrides the limit for a route path
func (r *RateLimiter) SetEndpointLimit(path string, every time.Duration, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: rate.Every(every), burst: burst}
}

// Cleanup drops expired blocks until stop is closed
func (r *RateLimiter) Cleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for key, blockUntil := range r.blockedIPs {
				if now.After(blockUntil) {
					delete(r.blockedIPs, key)
					// Also remove the limiter to reset its state
					delete(r.ips, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			if strings.HasPrefix(reqPath, "/uploads/") || reqPath == "/metrics" || reqPath == "/health" {
				return next(c)
			}

			// one limiter per client and route
			path := c.Path()
			key := c.RealIP() + "|" + path

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}

			limit, ok := r.endpointLimits[path]
			if !ok {
				limit = r.defaultLimit
			}
			limiter, exists := r.ips[key]
			if !exists {
				limiter = rate.NewLimiter(limit.limit, limit.burst)
				r.ips[key] = limiter
			}

			if !limiter.AllowN(r.now(), 1) {
				blockUntil := r.now().Add(r.blockDuration)
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}

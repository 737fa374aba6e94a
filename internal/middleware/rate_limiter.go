package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// ventana counts requests from one IP inside a fixed window.
type ventana struct {
	count int
	fin   time.Time
}

// limitador is a fixed-window counter per client IP. Expired entries are
// purged lazily on the request path, at most once per purgeInterval.
type limitador struct {
	limit   int
	window  time.Duration
	mensaje string
	now     func() time.Time

	mu        sync.Mutex
	ips       map[string]*ventana
	nextPurge time.Time
}

func newLimitador(limit int, window time.Duration, mensaje string) *limitador {
	return &limitador{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		now:     time.Now,
		ips:     make(map[string]*ventana),
	}
}

// permitir records one hit for ip and reports whether it is within the limit
// together with the end of the current window.
func (l *limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		l.purgar(now)
		l.nextPurge = now.Add(purgeInterval)
	}

	v, ok := l.ips[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.ips[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *limitador) purgar(now time.Time) {
	purged := 0
	for ip, v := range l.ips {
		if now.After(v.fin) {
			delete(l.ips, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.ips)).Msg("rate limiter entries purged")
	}
}

func (l *limitador) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login and registration attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimitador(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter returns a general-purpose limiter of limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimitador(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

// Package metrics holds the Prometheus collectors of the API. The collectors
// are usable before Init (unregistered), so services and tests can record
// without any setup; Init re-creates them under the configured namespace and
// registers them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal   = newHTTPRequests(promauto.With(nil), "")
	HTTPRequestDuration = newHTTPDuration(promauto.With(nil), "")

	// VentasTotal counts committed sales by metodo (efectivo | tarjeta).
	VentasTotal = newVentas(promauto.With(nil), "")
	// VentasRechazadas counts checkouts refused before any write, by motivo.
	VentasRechazadas = newRechazos(promauto.With(nil), "")
	CierresCaja      = newCierres(promauto.With(nil), "")
	// Impresiones counts print attempts by resultado (ok | fallo | encolado).
	Impresiones = newImpresiones(promauto.With(nil), "")
)

// Init registers every collector in reg under namespace.
func Init(namespace string, reg prometheus.Registerer) {
	f := promauto.With(reg)
	HTTPRequestsTotal = newHTTPRequests(f, namespace)
	HTTPRequestDuration = newHTTPDuration(f, namespace)
	VentasTotal = newVentas(f, namespace)
	VentasRechazadas = newRechazos(f, namespace)
	CierresCaja = newCierres(f, namespace)
	Impresiones = newImpresiones(f, namespace)
}

func newHTTPRequests(f promauto.Factory, ns string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
}

func newHTTPDuration(f promauto.Factory, ns string) *prometheus.HistogramVec {
	return f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
}

func newVentas(f promauto.Factory, ns string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "ventas_total",
		Help:      "Committed sales by payment method",
	}, []string{"metodo"})
}

func newRechazos(f promauto.Factory, ns string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "ventas_rechazadas_total",
		Help:      "Checkouts rejected before writing, by reason",
	}, []string{"motivo"})
}

func newCierres(f promauto.Factory, ns string) prometheus.Counter {
	return f.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "cierres_caja_total",
		Help:      "Till closes committed",
	})
}

func newImpresiones(f promauto.Factory, ns string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "impresiones_total",
		Help:      "Print bridge attempts by result",
	}, []string{"resultado"})
}

// Middleware records count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

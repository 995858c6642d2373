package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion directions used as the "direction" label.
const (
	DirectionToFixed     = "fixed"
	DirectionToInertial  = "inertial"
	DirectionToSpherical = "spherical"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framed_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framed_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framed_conversions_total",
			Help: "Total number of vectors converted, by target frame.",
		},
		[]string{"direction"},
	)

	invalidInputTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framed_invalid_input_total",
			Help: "Conversions rejected for non-finite input, by kind.",
		},
		[]string{"kind"},
	)

	transformCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framed_transform_cache_lookups_total",
			Help: "Transform cache lookups by result.",
		},
		[]string{"result"},
	)

	propagationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "framed_propagation_duration_seconds",
			Help:    "Duration of catalog snapshot propagation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	propagationResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framed_propagation_results_total",
			Help: "Satellite propagations by outcome.",
		},
		[]string{"outcome"},
	)

	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "framed_tle_catalog_size",
			Help: "Number of entries in the loaded TLE catalog.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(conversionsTotal)
	prometheus.MustRegister(invalidInputTotal)
	prometheus.MustRegister(transformCacheTotal)
	prometheus.MustRegister(propagationDurationSeconds)
	prometheus.MustRegister(propagationResultsTotal)
	prometheus.MustRegister(catalogSize)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordConversions adds n converted vectors for direction.
func RecordConversions(direction string, n int) {
	conversionsTotal.WithLabelValues(direction).Add(float64(n))
}

// RecordInvalidInput counts a rejected conversion. kind is "epoch" or "position".
func RecordInvalidInput(kind string) {
	invalidInputTotal.WithLabelValues(kind).Inc()
}

// RecordTransformCache counts a transform cache hit or miss.
func RecordTransformCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	transformCacheTotal.WithLabelValues(result).Inc()
}

// RecordPropagation records one snapshot run.
func RecordPropagation(duration time.Duration, success, failed int) {
	propagationDurationSeconds.Observe(duration.Seconds())
	propagationResultsTotal.WithLabelValues("success").Add(float64(success))
	propagationResultsTotal.WithLabelValues("error").Add(float64(failed))
}

// SetCatalogSize sets the TLE catalog size gauge.
func SetCatalogSize(n int) {
	catalogSize.Set(float64(n))
}

// knownRoutes are exact paths reported as their own label.
var knownRoutes = map[string]bool{
	"/":                         true,
	"/healthz":                  true,
	"/readyz":                   true,
	"/metrics":                  true,
	"/api/v1/convert/fixed":     true,
	"/api/v1/convert/inertial":  true,
	"/api/v1/convert/spherical": true,
	"/api/v1/matrices":          true,
	"/api/v1/catalog":           true,
	"/api/v1/snapshot":          true,
}

const ephemerisPrefix = "/api/v1/ephemeris/"

// normalizeRoute maps a request path to a bounded set of label values so
// that parameterized and unknown paths cannot blow up label cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, ephemerisPrefix) && len(path) > len(ephemerisPrefix) {
		return ephemerisPrefix + "{norad_id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}

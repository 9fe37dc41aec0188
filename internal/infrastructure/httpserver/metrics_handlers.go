package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	signupAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_attempts_total",
			Help: "Signup attempts by outcome",
		},
		[]string{"outcome"},
	)

	emailConfirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_confirmations_total",
			Help: "Email confirmation attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, signupAttempts, emailConfirmations)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":       "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration":     "Histogram for HTTP request duration by method, endpoint",
			"signup_attempts_total":     "Counter for signups by outcome",
			"email_confirmations_total": "Counter for confirmations by outcome",
			"metrics_endpoint":          "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

func (s *Server) metricsEndpoint(c echo.Context) error {
	if s.logger != nil {
		s.logger.Debug("Serving Prometheus metrics")
	}
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

package middleware

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "http_requests_total",
        Help: "HTTP requests by method, route and status.",
    }, []string{"method", "route", "status"})

    httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "http_request_duration_seconds",
        Help:    "HTTP request latency by method and route.",
        Buckets: prometheus.DefBuckets,
    }, []string{"method", "route"})

    rateLimited = promauto.NewCounter(prometheus.CounterOpts{
        Name: "http_rate_limited_total",
        Help: "Requests rejected by the rate limiter.",
    })

    cacheHits = promauto.NewCounter(prometheus.CounterOpts{
        Name: "http_cache_hits_total",
        Help: "Responses served from the Redis cache.",
    })
)

// Metrics records request count and latency labelled by the route
// template, not the raw path.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            method := c.Request().Method
            httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
            httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
            return nil
        }
    }
}

package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/activity-tracker/internal/config"
)

// captureWriter forwards the response while keeping up to limit bytes of
// the body.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// cacheKey hashes the request parts selected by cfg.KeyStrategy.  Every
// strategy that can see per-user data includes the caller.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    parts := []string{}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, "route", c.Path())
    case "route_query":
        parts = append(parts, "route", c.Path(), "q", r.URL.RawQuery)
    case "user_route":
        parts = append(parts, "user", callerKey(c), "route", c.Path())
    default: // user_route_query
        parts = append(parts, "user", callerKey(c), "route", c.Path(), "params",
            strings.Join(c.ParamValues(), ","), "q", r.URL.RawQuery)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// cachedResponse is the value stored under a cache key.  Only the content
// type is kept from the headers; the statistics endpoints set nothing else
// a client relies on.
type cachedResponse struct {
    Status      int    `json:"s"`
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

func encodePayload(status int, contentType string, body []byte) ([]byte, error) {
    return json.Marshal(cachedResponse{Status: status, ContentType: contentType, Body: body})
}

func decodePayload(bs []byte) (cachedResponse, bool) {
    var r cachedResponse
    if err := json.Unmarshal(bs, &r); err != nil || r.Status < 100 || r.Status > 599 {
        return cachedResponse{}, false
    }
    return r, true
}

// NewRedisCache serves repeated GETs of the statistics endpoints from Redis.
// Only 200 responses whose body fits in MaxBodyBytes are stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg, c)

            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if cached, ok := decodePayload(bs); ok {
                    c.Response().Header().Set("X-Cache", "HIT")
                    cacheHits.Inc()
                    return c.Blob(cached.Status, cached.ContentType, cached.Body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }
            ct := c.Response().Header().Get(echo.HeaderContentType)
            if payload, err := encodePayload(cw.status, ct, cw.buf.Bytes()); err == nil {
                _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

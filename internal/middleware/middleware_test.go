package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/activity-tracker/internal/config"
    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/utils"
)

const secret = "test-secret"

func newCtx(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
    tok, err := utils.NewAccessToken(secret, 42, "supervisor", 15, time.Now())
    require.NoError(t, err)

    req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    c, rec := newCtx(req)
    require.NoError(t, JWTAuth(secret)(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, uint64(42), c.Get(UserIDKey))
    assert.Equal(t, "supervisor", c.Get(RoleKey))
    assert.Equal(t, "42", callerKey(c))
}

func TestJWTAuthRejects(t *testing.T) {
    expired, err := utils.NewAccessToken(secret, 1, "funcionario", 1, time.Now().Add(-time.Hour))
    require.NoError(t, err)
    other, err := utils.NewAccessToken("other-secret", 1, "funcionario", 15, time.Now())
    require.NoError(t, err)

    for name, header := range map[string]string{
        "missing":      "",
        "not bearer":   "Basic abc",
        "garbage":      "Bearer abc.def.ghi",
        "expired":      "Bearer " + expired.Token,
        "wrong secret": "Bearer " + other.Token,
    } {
        t.Run(name, func(t *testing.T) {
            req := httptest.NewRequest(http.MethodGet, "/", nil)
            if header != "" {
                req.Header.Set("Authorization", header)
            }
            c, rec := newCtx(req)
            require.NoError(t, JWTAuth(secret)(ok)(c))
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
            assert.Contains(t, rec.Body.String(), `"message"`)
            assert.Equal(t, "anon", callerKey(c))
        })
    }
}

func TestRequireRole(t *testing.T) {
    mw := RequireRole("supervisor", "admin")

    c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
    c.Set(RoleKey, "admin")
    require.NoError(t, mw(ok)(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    c, rec = newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
    c.Set(RoleKey, "funcionario")
    require.NoError(t, mw(ok)(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)

    c, rec = newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
    require.NoError(t, mw(ok)(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNilRedisPassesThrough(t *testing.T) {
    rl := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
    cache := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)

    for i := 0; i < 3; i++ {
        c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
        require.NoError(t, rl(cache(ok))(c))
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Empty(t, rec.Header().Get("X-Cache"))
    }
}

func TestRateKey(t *testing.T) {
    req := httptest.NewRequest(http.MethodGet, "/actividades", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
    c, _ := newCtx(req)
    c.SetPath("/actividades")
    c.Set(UserIDKey, uint64(7))

    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
    assert.Equal(t, "rl:user:7:route:GET /actividades", rateKey(cfg, c))
    cfg.KeyStrategy = "ip"
    assert.Equal(t, "rl:ip:10.0.0.1", rateKey(cfg, c))
    cfg.KeyStrategy = ""
    assert.Equal(t, "rl:ip:10.0.0.1:user:7:route:GET /actividades", rateKey(cfg, c))
    assert.Equal(t, 2, retryAfterSeconds(1500))
    assert.Equal(t, 0, retryAfterSeconds(-10))
}

func TestCacheKeySeparatesUsers(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}
    key := func(uid uint64, query string) string {
        c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/estadisticas/actividades/diarias?"+query, nil))
        c.SetPath("/estadisticas/actividades/diarias")
        c.Set(UserIDKey, uid)
        return cacheKey(cfg, c)
    }
    assert.Equal(t, key(1, "a=1"), key(1, "a=1"))
    assert.NotEqual(t, key(1, "a=1"), key(2, "a=1"))
    assert.NotEqual(t, key(1, "a=1"), key(1, "a=2"))
    assert.Regexp(t, `^cache:[0-9a-f]{40}$`, key(1, ""))
}

func TestPayloadCodec(t *testing.T) {
    bs, err := encodePayload(200, "application/json", []byte(`{"a":1}`))
    require.NoError(t, err)

    got, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, 200, got.Status)
    assert.Equal(t, "application/json", got.ContentType)
    assert.Equal(t, `{"a":1}`, string(got.Body))

    _, ok = decodePayload([]byte{0, 1})
    assert.False(t, ok)
    _, ok = decodePayload([]byte(`{"s":0}`))
    assert.False(t, ok)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
    c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
    require.NoError(t, RequestLogger(logger.NewNop())(ok)(c))
    assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    req.Header.Set(echo.HeaderXRequestID, "abc")
    c, rec = newCtx(req)
    require.NoError(t, RequestLogger(logger.NewNop())(ok)(c))
    assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLoggerHandlesErrors(t *testing.T) {
    c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
    fail := func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") }
    require.NoError(t, RequestLogger(logger.NewNop())(fail)(c))
    assert.Equal(t, http.StatusTeapot, rec.Code)
}

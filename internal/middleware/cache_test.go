package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/config"
)

func cacheTestConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{"GET": true},
        TTL:          30,
        KeyStrategy:  "route_query",
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }
}

func TestCacheMissStoresResponse(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    cfg := cacheTestConfig()

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    key := cacheKeyFrom(cfg, c)

    mock.ExpectGet(key).RedisNil()
    mock.ExpectSetEx(key, encodeEntry(http.StatusOK, []byte("hello")), 30*time.Second).SetVal("OK")

    h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
        return c.String(http.StatusOK, "hello")
    })
    require.NoError(t, h(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "hello", rec.Body.String())
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheHitServesStoredResponse(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    cfg := cacheTestConfig()

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    key := cacheKeyFrom(cfg, c)

    stored := encodeEntry(http.StatusOK, []byte(`{"trips":[]}`))
    mock.ExpectGet(key).SetVal(string(stored))

    h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
        t.Fatal("handler must not run on a cache hit")
        return nil
    })
    require.NoError(t, h(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, `{"trips":[]}`, rec.Body.String())
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSkipsUnlistedMethods(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    cfg := cacheTestConfig()

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/trips", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
        return c.String(http.StatusCreated, "made")
    })
    require.NoError(t, h(c))

    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
    cfg := cacheTestConfig()

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    h := NewRedisCache(cfg, nil)(func(c echo.Context) error {
        return c.String(http.StatusOK, "direct")
    })
    require.NoError(t, h(c))
    assert.Equal(t, "direct", rec.Body.String())
}

func TestEncodeDecodeEntry(t *testing.T) {
    status, body, ok := decodeEntry(encodeEntry(418, []byte("teapot")))
    require.True(t, ok)
    assert.Equal(t, 418, status)
    assert.Equal(t, "teapot", string(body))

    _, _, ok = decodeEntry([]byte{1, 2})
    assert.False(t, ok)
}

func TestCacheKeyStrategies(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/trips?from=vienna", nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/trips")

    cfg := cacheTestConfig()
    base := cacheKeyFrom(cfg, c)
    assert.Contains(t, base, "cache:")

    cfg.KeyStrategy = "route"
    assert.NotEqual(t, base, cacheKeyFrom(cfg, c), "strategy must change the key")
}

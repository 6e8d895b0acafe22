package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counselnote/counsel-api/internal/config"
	"github.com/counselnote/counsel-api/internal/utils"
)

const secret = "middleware-secret"

func sessionServer() *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"userId": id, "sub": Claims(c).Subject})
	}, Session(secret))
	return e
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestSession_Rejections(t *testing.T) {
	e := sessionServer()
	expired, err := utils.NewSessionToken(secret, 5, -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.NewSessionToken("other-secret", 5, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		cookie string
		msg    string
	}{
		{"no cookie header", "", "No cookies found"},
		{"no token cookie", "theme=dark", "No token provided"},
		{"empty token", "token=", "No token provided"},
		{"garbage", "token=abc.def.ghi", "Invalid or expired token"},
		{"expired", "token=" + expired.Token, "Invalid or expired token"},
		{"wrong secret", "token=" + foreign.Token, "Invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", tc.cookie)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.msg, message(t, rec))
		})
	}
}

func TestSession_Valid(t *testing.T) {
	tok, err := utils.NewSessionToken(secret, 42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	rec := httptest.NewRecorder()
	sessionServer().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":42,"sub":"42"}`, rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/ok", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	id := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, id)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var inside, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))
	assert.Equal(t, id, inside["request_id"])
	assert.Equal(t, id, done["request_id"])
	assert.Equal(t, float64(200), done["status"])
	assert.Equal(t, "info", done["level"])

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, "fixed-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "fixed-id", rec.Header().Get(echo.HeaderXRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, float64(502), line["status"])
}

func TestResponseCache_DisabledPassesThrough(t *testing.T) {
	assert.Nil(t, NewResponseCache(config.CacheConfig{Enabled: true}, nil))
	assert.Nil(t, NewResponseCache(config.CacheConfig{Enabled: false}, nil))

	var rc *ResponseCache
	e := echo.New()
	calls := 0
	e.GET("/api/counselor/:counselorId/profile", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "p")
	}, rc.Cache("counselorId"))
	e.PUT("/api/counselor/:counselorId/full", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, rc.Invalidate("counselorId"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/counselor/4/profile", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/counselor/4/full", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, rc.Purge(context.Background(), "4"))
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestEntryKey(t *testing.T) {
	e := echo.New()
	key := func(target string, id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/counselor/:counselorId/timetable")
		c.SetParamNames("counselorId")
		c.SetParamValues(id)
		return entryKey("cache", id, 0, c)
	}

	a := key("/api/counselor/4/timetable", "4")
	assert.True(t, strings.HasPrefix(a, "cache:4:0:"))
	assert.Equal(t, a, key("/api/counselor/4/timetable", "4"))
	assert.NotEqual(t, a, key("/api/counselor/5/timetable", "5"))
	assert.NotEqual(t, a, key("/api/counselor/4/timetable?x=1", "4"))
	assert.Equal(t, "cache:tag:4", tagKey("cache", "4"))
	assert.Equal(t, "cache:gen:4", genKey("cache", "4"))
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))

	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func newRedisCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rc := NewResponseCache(config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}, rdb)
	require.NotNil(t, rc)
	return rc, mr
}

type counselorStub struct {
	contact map[string]string
	reads   int
}

func (s *counselorStub) server(rc *ResponseCache) *echo.Echo {
	e := echo.New()
	e.GET("/api/counselor/:counselorId/profile", func(c echo.Context) error {
		s.reads++
		contact, ok := s.contact[c.Param("counselorId")]
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Counselor not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{"contact": contact})
	}, rc.Cache("counselorId"))
	e.PUT("/api/counselor/:counselorId/full", func(c echo.Context) error {
		contact := c.QueryParam("contact")
		if contact == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
		}
		s.contact[c.Param("counselorId")] = contact
		return c.JSON(http.StatusOK, echo.Map{"contact": contact})
	}, rc.Invalidate("counselorId"))
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestResponseCache_HitMissAndPurge(t *testing.T) {
	rc, _ := newRedisCache(t)
	stub := &counselorStub{contact: map[string]string{"4": "a@x.io", "5": "b@x.io"}}
	e := stub.server(rc)

	rec := serve(e, http.MethodGet, "/api/counselor/4/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"contact":"a@x.io"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/counselor/4/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.JSONEq(t, `{"contact":"a@x.io"}`, rec.Body.String())
	assert.Equal(t, 1, stub.reads)

	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/api/counselor/5/profile").Header().Get("X-Cache"))
	assert.Equal(t, 2, stub.reads)

	// A failed write leaves the cache alone.
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPut, "/api/counselor/4/full").Code)
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/api/counselor/4/profile").Header().Get("X-Cache"))

	require.Equal(t, http.StatusOK, serve(e, http.MethodPut, "/api/counselor/4/full?contact=new@x.io").Code)

	rec = serve(e, http.MethodGet, "/api/counselor/4/profile")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"contact":"new@x.io"}`, rec.Body.String())
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/api/counselor/4/profile").Header().Get("X-Cache"))

	// Other counselors keep their entries.
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/api/counselor/5/profile").Header().Get("X-Cache"))
	assert.Equal(t, 3, stub.reads)
}

func TestResponseCache_SkipsNon200(t *testing.T) {
	rc, mr := newRedisCache(t)
	stub := &counselorStub{contact: map[string]string{}}
	e := stub.server(rc)

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/api/counselor/9/profile")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, stub.reads)
	assert.Empty(t, mr.Keys())
}

func TestResponseCache_WriteDuringReadIsNotServedStale(t *testing.T) {
	rc, _ := newRedisCache(t)
	contact := "old@x.io"
	first := true

	e := echo.New()
	e.GET("/api/counselor/:counselorId/profile", func(c echo.Context) error {
		seen := contact
		if first {
			// A PUT commits and purges after this read loaded its data.
			first = false
			contact = "new@x.io"
			require.NoError(t, rc.Purge(context.Background(), c.Param("counselorId")))
		}
		return c.JSON(http.StatusOK, echo.Map{"contact": seen})
	}, rc.Cache("counselorId"))

	rec := serve(e, http.MethodGet, "/api/counselor/4/profile")
	assert.JSONEq(t, `{"contact":"old@x.io"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/counselor/4/profile")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"contact":"new@x.io"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/counselor/4/profile")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"contact":"new@x.io"}`, rec.Body.String())
}

package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/counselnote/counsel-api/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
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

// ResponseCache stores successful GET responses in Redis.  Every entry is
// tagged with the value of one route parameter (the counselor id) so a write
// to that counselor drops all of its cached reads at once.
//
// Each tag also carries a generation counter that is part of the entry key.
// A read resolves the generation before running the handler and a purge
// bumps it, so a read that overlaps a write stores its body under a key no
// later read will look up.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns nil when caching is disabled or Redis is
// unavailable; a nil *ResponseCache passes every request through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func tagKey(prefix, tag string) string {
	return fmt.Sprintf("%s:tag:%s", prefix, tag)
}

func genKey(prefix, tag string) string {
	return fmt.Sprintf("%s:gen:%s", prefix, tag)
}

// generation returns the current generation of tag; 0 when never purged.
func (rc *ResponseCache) generation(ctx context.Context, tag string) (int64, error) {
	gen, err := rc.rdb.Get(ctx, genKey(rc.cfg.Prefix, tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// entryKey hashes route, params and query so keys stay short and stable.
func entryKey(prefix, tag string, gen int64, c echo.Context) string {
	r := c.Request()
	parts := []string{r.Method, c.Path()}
	for _, v := range c.ParamValues() {
		parts = append(parts, v)
	}
	parts = append(parts, r.URL.RawQuery)
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%s:%d:%x", prefix, tag, gen, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// Cache serves configured methods from Redis, tagging entries with the
// route parameter tagParam.  Only 200 responses are stored.
func (rc *ResponseCache) Cache(tagParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rc == nil {
			return next
		}
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			tag := c.Param(tagParam)
			gen, err := rc.generation(ctx, tag)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("cache generation lookup failed")
				return next(c)
			}
			key := entryKey(rc.cfg.Prefix, tag, gen, c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, echo.HeaderXRequestID) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			}

			limit := int64(rc.cfg.MaxBodyBytes)
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: limit}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (limit > 0 && cw.size > limit) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			store := context.WithoutCancel(ctx)
			pipe := rc.rdb.TxPipeline()
			pipe.SetEx(store, key, payload, rc.cfg.TTL)
			pipe.SAdd(store, tagKey(rc.cfg.Prefix, tag), key)
			pipe.Expire(store, tagKey(rc.cfg.Prefix, tag), rc.cfg.TTL)
			if _, err := pipe.Exec(store); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("cache store failed")
			}
			return nil
		}
	}
}

// Invalidate drops every entry tagged with the route parameter tagParam
// after the wrapped handler answered with a 2xx status.
func (rc *ResponseCache) Invalidate(tagParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rc == nil {
			return next
		}
		return func(c echo.Context) error {
			err := next(c)
			if status := c.Response().Status; err == nil && status >= 200 && status < 300 {
				ctx := c.Request().Context()
				if perr := rc.Purge(context.WithoutCancel(ctx), c.Param(tagParam)); perr != nil {
					zerolog.Ctx(ctx).Warn().Err(perr).Msg("cache invalidation failed")
				}
			}
			return err
		}
	}
}

// Purge bumps the generation of tag and deletes all cached responses
// carrying it.
func (rc *ResponseCache) Purge(ctx context.Context, tag string) error {
	if rc == nil {
		return nil
	}
	if err := rc.rdb.Incr(ctx, genKey(rc.cfg.Prefix, tag)).Err(); err != nil {
		return err
	}
	tk := tagKey(rc.cfg.Prefix, tag)
	keys, err := rc.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		return err
	}
	return rc.rdb.Del(ctx, append(keys, tk)...).Err()
}

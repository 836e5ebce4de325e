package idempotency

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"shipment-console/internal/logx"
)

// HeaderKey is the request header carrying the client's idempotency key.
const HeaderKey = "Idempotency-Key"

// HeaderReplay marks a replayed response.
const HeaderReplay = "Idempotent-Replay"

const bodyLimit = 1 << 20

type record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Middleware stores the first answer per (scope, key) and replays it for retries.
// Requests without the header pass through untouched.
type Middleware struct {
	store  Store
	ttl    time.Duration
	logger logx.Logger
	scope  func(*http.Request) string
}

// New creates a Middleware. scope partitions keys, typically by viewer.
func New(store Store, ttl time.Duration, logger logx.Logger, scope func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = logx.Nop()
	}
	if scope == nil {
		scope = func(*http.Request) string { return "" }
	}
	return &Middleware{store: store, ttl: ttl, logger: logger, scope: scope}
}

// Handler returns chi-style middleware.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := strings.TrimSpace(r.Header.Get(HeaderKey))
			if idemKey == "" || m.store == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, bodyLimit))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid json")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := storeKey(m.scope(r), r.Method, r.URL.Path, idemKey)
			reqHash := hashBody(body)

			stored, found, err := m.store.Get(r.Context(), key)
			if err != nil {
				// хранилище недоступно: обслуживаем без повторного воспроизведения
				m.logger.Warn("idempotency lookup failed", logx.String("key", idemKey), logx.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if found {
				m.replay(w, idemKey, stored, reqHash)
				return
			}

			rec := &capture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(record{
				Status:      rec.statusOrOK(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: reqHash,
			})
			if err != nil {
				m.logger.Warn("idempotency record encode failed", logx.Err(err))
				return
			}
			if _, err := m.store.SetNX(r.Context(), key, string(payload), m.ttl); err != nil {
				m.logger.Warn("idempotency record store failed", logx.String("key", idemKey), logx.Err(err))
			}
		})
	}
}

func (m *Middleware) replay(w http.ResponseWriter, idemKey, stored, reqHash string) {
	var rec record
	if err := json.Unmarshal([]byte(stored), &rec); err != nil {
		m.logger.Warn("idempotency record decode failed", logx.String("key", idemKey), logx.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rec.RequestHash != reqHash {
		writeError(w, http.StatusUnprocessableEntity, "idempotency key reused with a different request body")
		return
	}
	body, err := base64.StdEncoding.DecodeString(rec.Body)
	if err != nil {
		m.logger.Warn("idempotency record decode failed", logx.String("key", idemKey), logx.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m.logger.Debug("idempotent replay", logx.String("key", idemKey), logx.Int("status", rec.Status))
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set(HeaderReplay, "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(body)
}

func storeKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type capture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capture) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *capture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *capture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/forgo/lending/internal/model"
)

// maxReplayBody bounds the request bodies the cache reads to fingerprint
const maxReplayBody = 1 << 20

// ReplayCache remembers the outcome of reserve and cancel calls sent with
// an Idempotency-Key. A client retrying after a lost response gets the
// original 201 or 204 instead of a 409 or 404.
type ReplayCache struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *replay]
}

// replay is one keyed call. Its response fields are written once, before
// done is closed.
type replay struct {
	fingerprint string
	done        chan struct{}

	status int
	header http.Header
	body   []byte
	kept   bool
}

// IdempotencyConfig holds configuration for the replay cache
type IdempotencyConfig struct {
	TTL        time.Duration // How long a result is replayed (default 24h)
	MaxEntries int           // Results kept at once (default 10000)
}

// NewReplayCache creates a new replay cache
func NewReplayCache(cfg IdempotencyConfig) *ReplayCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	return &ReplayCache{
		entries: expirable.NewLRU[string, *replay](cfg.MaxEntries, nil, cfg.TTL),
	}
}

// Len returns the number of remembered calls
func (c *ReplayCache) Len() int {
	return c.entries.Len()
}

// claim returns the call already registered under key, or registers a new
// one. owner is true when the caller must run the request itself.
func (c *ReplayCache) claim(key, fingerprint string) (entry *replay, owner bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries.Get(key); ok {
		return existing, false
	}
	entry = &replay{fingerprint: fingerprint, done: make(chan struct{})}
	c.entries.Add(key, entry)
	return entry, true
}

// settle records the response and wakes waiting retries. Server errors are
// not kept, so the next retry runs again.
func (c *ReplayCache) settle(key string, entry *replay, rec *replayRecorder) {
	entry.status = rec.status
	entry.header = rec.Header().Clone()
	entry.body = rec.body.Bytes()
	entry.kept = rec.status < http.StatusInternalServerError

	if !entry.kept {
		c.mu.Lock()
		if current, ok := c.entries.Peek(key); ok && current == entry {
			c.entries.Remove(key)
		}
		c.mu.Unlock()
	}
	close(entry.done)
}

// replayKey scopes an Idempotency-Key to the client that sent it
func replayKey(client, idempotencyKey string) string {
	h := sha256.New()
	h.Write([]byte(client))
	h.Write([]byte{0})
	h.Write([]byte(idempotencyKey))
	return hex.EncodeToString(h.Sum(nil))
}

// requestFingerprint identifies what a keyed call asked for
func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// replayRecorder copies the response as it is written
type replayRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *replayRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *replayRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first response of a reserve or cancel call for a
// repeated Idempotency-Key from the same client. Reusing a key for a
// different call is rejected with 422.
func Idempotency(cache *ReplayCache, clients Clients) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" || !mutatesReservations(r) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReplayBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					model.NewBadRequestError("request body too large").WriteJSON(w)
					return
				}
				model.NewBadRequestError("could not read request body").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(clients.Key(r), idempotencyKey)
			fingerprint := requestFingerprint(r.Method, r.URL.Path, body)

			for {
				entry, owner := cache.claim(key, fingerprint)
				if owner {
					rec := &replayRecorder{ResponseWriter: w, status: http.StatusOK}
					next.ServeHTTP(rec, r)
					cache.settle(key, entry, rec)
					return
				}

				if entry.fingerprint != fingerprint {
					model.NewIdempotencyMismatchError().WriteJSON(w)
					return
				}

				select {
				case <-entry.done:
				case <-r.Context().Done():
					return
				}

				if entry.kept {
					writeReplay(w, entry)
					return
				}
				// the first attempt failed and was dropped; run this one
			}
		})
	}
}

// writeReplay sends a remembered response. Headers this request already
// carries, such as its request id, are left alone.
func writeReplay(w http.ResponseWriter, entry *replay) {
	for k, v := range entry.header {
		if w.Header().Get(k) == "" {
			w.Header()[k] = append([]string(nil), v...)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

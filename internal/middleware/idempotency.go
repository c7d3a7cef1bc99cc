package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/mfai/ambassador/api/internal/model"
	"go.uber.org/zap"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 255

// IdempotencyStore remembers the responses of requests sent with an
// Idempotency-Key header, so a retried completion replays the first answer
// instead of reaching the service twice.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*idempotencyEntry
	ttl     time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
}

type idempotencyEntry struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a store and starts its expiry loop.
// Call Stop to end the loop.
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}
	go store.cleanupLoop(cfg.Cleanup)
	return store
}

// Stop ends the expiry loop. It may be called more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// claim returns a finished entry to replay, or registers a new in-flight
// entry owned by the caller. A caller that finds the key in flight waits for
// the owner, or gives up with ctx.Err() when its own request ends first.
func (s *IdempotencyStore) claim(ctx context.Context, key string) (replay, owned *idempotencyEntry, err error) {
	for {
		s.mu.Lock()
		entry, exists := s.entries[key]
		switch {
		case !exists, !entry.inFlight && entry.expiresAt.Before(time.Now()):
			entry = &idempotencyEntry{inFlight: true, done: make(chan struct{})}
			s.entries[key] = entry
			s.mu.Unlock()
			return nil, entry, nil
		case entry.inFlight:
			done := entry.done
			s.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		default:
			s.mu.Unlock()
			return entry, nil, nil
		}
	}
}

// finish stores the captured response, or forgets the key when the handler
// failed with a server error or never returned normally, so the client can
// retry.
func (s *IdempotencyStore) finish(key string, entry *idempotencyEntry, rw *idempotencyResponseWriter, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !completed || rw.status >= http.StatusInternalServerError {
		delete(s.entries, key)
	} else {
		entry.status = rw.status
		entry.headers = rw.Header().Clone()
		entry.body = rw.body.Bytes()
		entry.expiresAt = time.Now().Add(s.ttl)
	}
	entry.inFlight = false
	close(entry.done)
}

// generateKey fingerprints the caller, the client's key and the request.
// Each part is length-prefixed so that shifting bytes between parts changes
// the digest.
func generateKey(caller, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	var n [8]byte
	for _, part := range [][]byte{[]byte(caller), []byte(idempotencyKey), []byte(method), []byte(path), body} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter tees the response into a buffer
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func writeReplay(w http.ResponseWriter, entry *idempotencyEntry) {
	h := w.Header()
	for k, v := range entry.headers {
		for _, val := range v {
			h.Add(k, val)
		}
	}
	h.Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency answers repeated POST and PUT requests that carry the same
// Idempotency-Key, caller, path and body with the first response. Server
// errors are not remembered.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > MaxIdempotencyKeyLength {
				model.NewBadRequestError("Idempotency-Key must be at most 255 characters").WriteJSON(w)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				model.NewBadRequestError("could not read request body").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := generateKey(rateLimitKey(r), idempotencyKey, r.Method, r.URL.Path, body)

			replay, entry, err := store.claim(r.Context(), key)
			if err != nil {
				// The client went away while a duplicate was running
				return
			}
			if replay != nil {
				metrics.IdempotentReplaysTotal.Inc()
				zap.L().Debug("idempotent replay",
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())),
				)
				writeReplay(w, replay)
				return
			}

			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			completed := false
			defer func() { store.finish(key, entry, irw, completed) }()

			next.ServeHTTP(irw, r)
			completed = true
		})
	}
}

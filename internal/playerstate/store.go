// Package playerstate is the host-side cache of "my progress": a single
// in-memory record kept eventually consistent with the server. Reads are
// synchronous; mutations are server round trips whose authoritative
// response replaces the whole cached record. Reporting is best effort —
// gameplay never blocks on it and failures never surface to the player.
package playerstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"shelley-server/internal/models"

	"go.uber.org/zap"
)

// SessionCookieName matches the cookie issued by the session endpoint.
const SessionCookieName = "shelley_session"

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	Progress  *models.Progress `json:"progress"`
}

type eventResponse struct {
	Progress *models.Progress `json:"progress"`
}

// Store caches the progress record for one session.
type Store struct {
	baseURL       string
	httpClient    *http.Client
	sessionCookie string
	logger        *zap.Logger

	mu          sync.Mutex
	progress    models.Progress
	sessionID   string
	initialized bool
	initDone    chan struct{}

	listenerMu sync.Mutex
	nextID     int
	listeners  map[int]func()
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient replaces the default client (used by tests and by hosts
// that need custom transports).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) { s.httpClient = client }
}

// WithSessionCookie pins an existing session cookie value instead of
// relying on the cookie jar. The bridge gateway uses this to report on
// behalf of the browser session that opened the game connection.
func WithSessionCookie(value string) Option {
	return func(s *Store) { s.sessionCookie = value }
}

// New creates a store talking to the progress API at baseURL.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Store {
	jar, _ := cookiejar.New(nil)
	s := &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Jar:     jar,
		},
		logger:    logger.Named("PlayerState"),
		progress:  models.EmptyProgress(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitSession establishes or resumes the session and populates the
// cache. Idempotent: the first caller performs the round trip, concurrent
// callers wait for the same outcome, later callers return immediately.
// Failure is non-fatal: the cache falls back to an all-zero record and
// the error is only logged.
func (s *Store) InitSession(ctx context.Context) models.Progress {
	s.mu.Lock()
	if s.initialized {
		snapshot := s.progress.Clone()
		s.mu.Unlock()
		return snapshot
	}
	if s.initDone != nil {
		done := s.initDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return s.Snapshot()
	}
	done := make(chan struct{})
	s.initDone = done
	s.mu.Unlock()

	resp, err := s.postJSON(ctx, "/api/session", nil)

	s.mu.Lock()
	s.initialized = true
	s.initDone = nil
	if err != nil {
		s.logger.Warn("Session init failed, using empty progress", zap.Error(err))
	} else {
		var payload sessionResponse
		if decodeErr := json.Unmarshal(resp, &payload); decodeErr != nil {
			s.logger.Warn("Session response malformed, using empty progress", zap.Error(decodeErr))
		} else {
			s.sessionID = payload.SessionID
			if payload.Progress != nil {
				s.progress = payload.Progress.Clone()
			}
		}
	}
	snapshot := s.progress.Clone()
	s.mu.Unlock()

	close(done)
	s.notify()
	return snapshot
}

// ReportEvent sends a semantic game event to the server. On success the
// cached record is replaced wholesale with the server's authoritative
// response and listeners are notified. On failure the cache is left
// unchanged and the error is swallowed (logged): progress reporting is
// fire and forget.
func (s *Store) ReportEvent(ctx context.Context, event models.GameEvent) models.Progress {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("Failed to marshal game event", zap.Error(err))
		return s.Snapshot()
	}

	resp, err := s.postJSON(ctx, "/api/game-event", body)
	if err != nil {
		s.logger.Warn("Event report failed, keeping cached progress",
			zap.String("eventType", string(event.Type)), zap.Error(err))
		return s.Snapshot()
	}

	var payload eventResponse
	if err := json.Unmarshal(resp, &payload); err != nil || payload.Progress == nil {
		s.logger.Warn("Event response malformed, keeping cached progress", zap.Error(err))
		return s.Snapshot()
	}

	s.mu.Lock()
	s.progress = payload.Progress.Clone()
	snapshot := s.progress.Clone()
	s.mu.Unlock()

	s.notify()
	return snapshot
}

// Snapshot returns the current cached record without touching the
// network.
func (s *Store) Snapshot() models.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// SessionID returns the resolved session id ("" until init succeeds).
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Initialized reports whether InitSession has completed (successfully or
// not).
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Subscribe registers a change listener, invoked once per successful init
// or report. Returns the disposer.
func (s *Store) Subscribe(fn func()) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Store) notify() {
	s.listenerMu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) postJSON(ctx context.Context, path string, body []byte) ([]byte, error) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: s.sessionCookie})
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

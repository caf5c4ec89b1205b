// Package session provides cookie-keyed HTTP sessions backed by a
// server-side store (Redis when configured, in-process memory otherwise).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("username", "alice")
//	sess.Save(w)
//	name, _ := sess.GetString("username")
//
// The cookie value is an opaque random ID; all session data lives server
// side, so logout is a hard revocation (store delete + expired cookie).
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/shashiranjanraj/orderdesk/pkg/logger"
)

// ─── Options ──────────────────────────────────────────────────────────────────

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		CookieName: "orderdesk_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false, // set true behind TLS
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ─── Session ──────────────────────────────────────────────────────────────────

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	id      string
	data    map[string]interface{}
	opts    Options
	changed bool
}

// newID generates a cryptographically random 32-byte hex session ID.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// mustID returns a fresh session ID, logging a crypto/rand failure instead
// of silently handing out an empty ID.
func mustID() string {
	id, err := newID()
	if err != nil {
		logger.Error("session: generate id", "error", err)
	}
	return id
}

// Set stores a value under key in the session.
func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

// Get retrieves a value from the session.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	s2, ok := v.(string)
	return s2, ok
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Renew swaps the session onto a fresh ID, dropping the old store entry and
// keeping the data. Call on privilege changes such as login so an ID seen
// before authentication is never valid after it.
func (s *Session) Renew() {
	_ = activeStore().Delete(s.id)
	s.id = mustID()
	s.changed = true
}

// Save persists the session to the store and writes the cookie to the
// response. A no-op when nothing changed.
func (s *Session) Save(w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if err := activeStore().Set(s.id, s.data, s.opts.TTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// Destroy removes the session from the store and expires the cookie.
// Always succeeds from the caller's point of view.
func (s *Session) Destroy(w http.ResponseWriter) {
	_ = activeStore().Delete(s.id)
	s.data = map[string]interface{}{}
	s.changed = false

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     s.opts.Path,
		MaxAge:   -1,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// Middleware loads (or creates) the session for every request and injects it
// into the request context. Handlers call session.FromCtx(r) to access it.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts}

			// Only a cookie value the store actually knows is adopted as the
			// session ID. An unknown value is discarded so a client can never
			// pick its own ID (session fixation).
			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				if data, ok := activeStore().Get(cookie.Value); ok {
					sess.id = cookie.Value
					sess.data = data
				}
			}
			if sess.id == "" {
				sess.id = mustID()
				sess.data = map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx retrieves the session from the request context.
// Returns an empty (unsaved) session if none is present.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: mustID(), data: map[string]interface{}{}, opts: DefaultOptions()}
}

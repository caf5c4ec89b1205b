package session_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/orderdesk/pkg/session"
)

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := session.NewMemoryStore()

	err := store.Set("id1", map[string]interface{}{"username": "alice"}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	if data, ok := store.Get("id1"); !ok || data["username"] != "alice" {
		t.Fatalf("expected live entry, got %v ok=%v", data, ok)
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := store.Get("id1"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := session.NewMemoryStore()

	_ = store.Set("id2", map[string]interface{}{"k": "v"}, time.Minute)
	if err := store.Delete("id2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get("id2"); ok {
		t.Error("expected entry to be gone after Delete")
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := session.NewMemoryStore()

	_ = store.Set("id3", map[string]interface{}{"username": "alice"}, time.Minute)

	first, _ := store.Get("id3")
	first["username"] = "mallory"

	if second, _ := store.Get("id3"); second["username"] != "alice" {
		t.Errorf("mutating a returned map leaked into the store: %v", second)
	}
}

// Two in-flight requests with the same cookie each work on their own copy of
// the session data, so one writing while the other reads is safe.
func TestMiddleware_ConcurrentRequestsSameCookie(t *testing.T) {
	session.UseStore(session.NewMemoryStore())
	defer session.UseStore(nil)

	opts := session.DefaultOptions()
	mw := session.Middleware(opts)

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("username", "alice")
		_ = sess.Save(w)
	})).ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
	cookie := rec.Result().Cookies()[0]

	writer := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("role", "client")
		_ = sess.Save(w)
	}))
	reader := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = session.FromCtx(r).GetString("username")
	}))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		h := writer
		if i == 1 {
			h = reader
		}
		wg.Add(1)
		go func(h http.Handler) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				req := httptest.NewRequest("GET", "/", nil)
				req.AddCookie(cookie)
				h.ServeHTTP(httptest.NewRecorder(), req)
			}
		}(h)
	}
	wg.Wait()
}

// A cookie value the store does not know must never become the session ID.
func TestMiddleware_DiscardsUnknownCookieID(t *testing.T) {
	session.UseStore(session.NewMemoryStore())
	defer session.UseStore(nil)

	opts := session.DefaultOptions()
	mw := session.Middleware(opts)

	const planted = "attacker-known-id"

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	req.AddCookie(&http.Cookie{Name: opts.CookieName, Value: planted})
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("username", "victim")
		_ = sess.Save(w)
	})).ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == planted {
		t.Fatalf("expected a server-generated session ID, got %v", cookies)
	}

	// Replaying the planted value must come back anonymous.
	var got string
	req2 := httptest.NewRequest("GET", "/who", nil)
	req2.AddCookie(&http.Cookie{Name: opts.CookieName, Value: planted})
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromCtx(r).GetString("username")
	})).ServeHTTP(httptest.NewRecorder(), req2)

	if got != "" {
		t.Errorf("planted cookie value resolved to a session with username %q", got)
	}
}

func TestRenew_RotatesID(t *testing.T) {
	session.UseStore(session.NewMemoryStore())
	defer session.UseStore(nil)

	opts := session.DefaultOptions()
	mw := session.Middleware(opts)

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("step", "anon")
		_ = sess.Save(w)
	})).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	anonCookie := rec.Result().Cookies()[0]

	rec2 := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	req.AddCookie(anonCookie)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Renew()
		sess.Set("username", "alice")
		_ = sess.Save(w)
	})).ServeHTTP(rec2, req)
	authCookie := rec2.Result().Cookies()[0]

	if authCookie.Value == anonCookie.Value {
		t.Fatal("expected login to rotate the session ID")
	}

	// The pre-auth ID must be dead.
	var got string
	req2 := httptest.NewRequest("GET", "/who", nil)
	req2.AddCookie(anonCookie)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromCtx(r).GetString("username")
	})).ServeHTTP(httptest.NewRecorder(), req2)

	if got != "" {
		t.Errorf("pre-auth session ID still resolves, got username %q", got)
	}
}

// roundtrip drives a set-then-read pair of requests through the middleware,
// carrying the cookie like a browser would.
func TestMiddleware_PersistsAcrossRequests(t *testing.T) {
	session.UseStore(session.NewMemoryStore())
	defer session.UseStore(nil)

	opts := session.DefaultOptions()
	mw := session.Middleware(opts)

	setHandler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("username", "alice")
		if err := sess.Save(w); err != nil {
			t.Errorf("Save: %v", err)
		}
	}))

	rec := httptest.NewRecorder()
	setHandler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != opts.CookieName {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}

	var got string
	readHandler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromCtx(r).GetString("username")
	}))

	req := httptest.NewRequest("GET", "/who", nil)
	req.AddCookie(cookies[0])
	readHandler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "alice" {
		t.Errorf("expected username to survive the roundtrip, got %q", got)
	}
}

func TestDestroy_RevokesServerSide(t *testing.T) {
	session.UseStore(session.NewMemoryStore())
	defer session.UseStore(nil)

	opts := session.DefaultOptions()
	mw := session.Middleware(opts)

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("username", "alice")
		_ = sess.Save(w)
	})).ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
	cookie := rec.Result().Cookies()[0]

	// Destroy the session.
	rec2 := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.FromCtx(r).Destroy(w)
	})).ServeHTTP(rec2, req)

	expired := rec2.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge != -1 {
		t.Errorf("expected an expired cookie, got %v", expired)
	}

	// Replaying the old cookie must come back anonymous.
	var got string
	req2 := httptest.NewRequest("GET", "/who", nil)
	req2.AddCookie(cookie)
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromCtx(r).GetString("username")
	})).ServeHTTP(httptest.NewRecorder(), req2)

	if got != "" {
		t.Errorf("expected revoked session, got username %q", got)
	}
}

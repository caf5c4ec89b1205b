package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/config"
	"github.com/shashiranjanraj/orderdesk/internal/server"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

// newApp boots a fresh app on a temp data dir and returns the test server.
func newApp(t *testing.T) *httptest.Server {
	t.Helper()
	require.NoError(t, jsonstore.Connect(t.TempDir()))
	require.NoError(t, repositories.NewUserRepository().EnsureAdmin())

	ts := httptest.NewServer(server.NewRouter().Handler())
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns an http.Client that keeps session cookies.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// call sends a JSON request and decodes the JSON response body.
func call(t *testing.T, c *http.Client, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	status, body := call(t, c, "POST", ts.URL+"/register",
		map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	// Registration logs the user in.
	_, who := call(t, c, "GET", ts.URL+"/who", nil)
	assert.Equal(t, true, who["logged"])
	assert.Equal(t, "alice", who["username"])
	assert.Equal(t, "client", who["role"])

	status, _ = call(t, c, "POST", ts.URL+"/logout", nil)
	require.Equal(t, http.StatusOK, status)

	_, who = call(t, c, "GET", ts.URL+"/who", nil)
	assert.Equal(t, false, who["logged"])

	// Wrong password and unknown user produce the same error.
	status, wrongPw := call(t, c, "POST", ts.URL+"/login",
		map[string]string{"username": "alice", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, noUser := call(t, c, "POST", ts.URL+"/login",
		map[string]string{"username": "ghost", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, wrongPw["error"], noUser["error"])

	status, _ = call(t, c, "POST", ts.URL+"/login",
		map[string]string{"username": "alice", "password": "pw1"})
	assert.Equal(t, http.StatusOK, status)
}

// A session cookie planted before login must not become the logged-in
// session's ID.
func TestLogin_IgnoresPlantedSessionCookie(t *testing.T) {
	ts := newApp(t)

	status, _ := call(t, newClient(t), "POST", ts.URL+"/register",
		map[string]string{"username": "victim", "password": "pw1"})
	require.Equal(t, http.StatusOK, status)

	const planted = "1234deadbeef"
	req, err := http.NewRequest("POST", ts.URL+"/login",
		bytes.NewBufferString(`{"username":"victim","password":"pw1"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "orderdesk_session", Value: planted})

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var issued string
	for _, ck := range res.Cookies() {
		if ck.Name == "orderdesk_session" {
			issued = ck.Value
		}
	}
	require.NotEmpty(t, issued)
	assert.NotEqual(t, planted, issued)

	// Replaying the planted value stays anonymous.
	req2, err := http.NewRequest("GET", ts.URL+"/who", nil)
	require.NoError(t, err)
	req2.AddCookie(&http.Cookie{Name: "orderdesk_session", Value: planted})
	res2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer res2.Body.Close()

	var who map[string]interface{}
	require.NoError(t, json.NewDecoder(res2.Body).Decode(&who))
	assert.Equal(t, false, who["logged"])
}

func TestRegister_ReservedAdminLogin(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	status, body := call(t, c, "POST", ts.URL+"/register",
		map[string]string{"username": config.AdminLogin(), "password": "anything"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
}

func TestOrderLifecycle(t *testing.T) {
	ts := newApp(t)
	alice := newClient(t)
	admin := newClient(t)

	status, _ := call(t, alice, "POST", ts.URL+"/register",
		map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, status)

	status, created := call(t, alice, "POST", ts.URL+"/api/orders",
		map[string]string{"type": "video", "description": "edit clip"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), created["id"])

	// Alice sees her pending order.
	_, list := call(t, alice, "GET", ts.URL+"/api/orders", nil)
	orders := list["orders"].([]interface{})
	require.Len(t, orders, 1)
	first := orders[0].(map[string]interface{})
	assert.Equal(t, "pending", first["status"])

	// Admin logs in and updates the status.
	status, _ = call(t, admin, "POST", ts.URL+"/login",
		map[string]string{"username": config.AdminLogin(), "password": config.AdminPassword()})
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, admin, "POST", ts.URL+"/api/orders/1/status",
		map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, status)

	_, list = call(t, alice, "GET", ts.URL+"/api/orders", nil)
	first = list["orders"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "done", first["status"])

	// Unknown id is a 404.
	status, _ = call(t, admin, "POST", ts.URL+"/api/orders/999/status",
		map[string]string{"status": "done"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderCreate_RequiresAuth(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	status, body := call(t, c, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "no session"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["ok"])
}

func TestOrderCreate_ValidationAndDefaults(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	_, _ = call(t, c, "POST", ts.URL+"/register",
		map[string]string{"username": "bob", "password": "pw"})

	// Whitespace-only description fails validation.
	status, _ := call(t, c, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	// Missing type falls back to the default.
	status, _ = call(t, c, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "just this"})
	require.Equal(t, http.StatusOK, status)

	_, list := call(t, c, "GET", ts.URL+"/api/orders", nil)
	order := list["orders"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "video", order["type"])
}

func TestSetStatus_ForbiddenForClients(t *testing.T) {
	ts := newApp(t)
	alice := newClient(t)

	_, _ = call(t, alice, "POST", ts.URL+"/register",
		map[string]string{"username": "alice", "password": "pw1"})
	status, created := call(t, alice, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "edit clip"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), created["id"])

	status, _ = call(t, alice, "POST", ts.URL+"/api/orders/1/status",
		map[string]string{"status": "done"})
	assert.Equal(t, http.StatusForbidden, status)

	// The order is untouched.
	_, list := call(t, alice, "GET", ts.URL+"/api/orders", nil)
	order := list["orders"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])

	// Anonymous callers are rejected too.
	anon := newClient(t)
	status, _ = call(t, anon, "POST", ts.URL+"/api/orders/1/status",
		map[string]string{"status": "done"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOrderList_ClientSeesOnlyOwn(t *testing.T) {
	ts := newApp(t)
	alice := newClient(t)
	bob := newClient(t)

	_, _ = call(t, alice, "POST", ts.URL+"/register",
		map[string]string{"username": "alice", "password": "pw"})
	_, _ = call(t, bob, "POST", ts.URL+"/register",
		map[string]string{"username": "bob", "password": "pw"})

	_, _ = call(t, alice, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "alice order"})
	_, _ = call(t, bob, "POST", ts.URL+"/api/orders",
		map[string]string{"description": "bob order"})

	_, list := call(t, bob, "GET", ts.URL+"/api/orders", nil)
	orders := list["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "bob", orders[0].(map[string]interface{})["user"])

	// Anonymous list is empty, not an error.
	anon := newClient(t)
	status, list := call(t, anon, "GET", ts.URL+"/api/orders", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, list["orders"])
}

func TestMessages_AnonymousPostsAsGuest(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	status, body := call(t, c, "POST", ts.URL+"/api/messages",
		map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, status)
	msg := body["msg"].(map[string]interface{})
	assert.Equal(t, "guest", msg["username"])

	_, list := call(t, c, "GET", ts.URL+"/api/messages", nil)
	messages := list["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].(map[string]interface{})["message"])
}

func TestMessages_SenderResolution(t *testing.T) {
	ts := newApp(t)
	c := newClient(t)

	_, _ = call(t, c, "POST", ts.URL+"/register",
		map[string]string{"username": "alice", "password": "pw"})

	// Session identity wins when no explicit username is sent.
	_, body := call(t, c, "POST", ts.URL+"/api/messages",
		map[string]string{"message": "from session"})
	assert.Equal(t, "alice", body["msg"].(map[string]interface{})["username"])

	// An explicit username overrides the session.
	_, body = call(t, c, "POST", ts.URL+"/api/messages",
		map[string]string{"username": "someone", "message": "explicit"})
	assert.Equal(t, "someone", body["msg"].(map[string]interface{})["username"])

	// Empty message fails validation.
	status, _ := call(t, c, "POST", ts.URL+"/api/messages",
		map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
}

package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/router"
	"github.com/comanda-pos/api/internal/ws"
)

// newTestRouter builds the router without a database; only routes that
// never reach the store are exercised here.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "router-test-secret",
		Timezone:    "UTC",
		CORSOrigins: []string{"http://localhost:5173"},
	}
	return router.New(cfg, database.New(nil), nil, ws.NewHub())
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if got := rr.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body: got %s", got)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/ordenes/", "/catalogo/", "/usuarios/"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", path, rr.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/ordenes/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin: got %q", got)
	}
}

func TestRequestIDHeaderAccepted(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
}

package control

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/control/middleware"
	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/feed"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

func newTestServer(t *testing.T) (*httptest.Server, *middleware.JWTMaker) {
	t.Helper()
	router := dispatch.New()
	go router.Run()
	router.Dispatch(feed.AddOrder{SymbolName: "AAPL", OrderID: 1, Price: 100, Qty: 10, Side: bookmodel.Buy})

	maker, err := middleware.NewJWTMaker("a-secret-at-least-32-characters-long")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mux := http.NewServeMux()
	BindRouter(BindRouterOpts{
		ServerRouter: mux,
		Router:       router,
		TokenMaker:   maker,
		Logger:       log.New(io.Discard, "", 0),
	})
	return httptest.NewServer(mux), maker
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestBBOEndpointIsUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/admin/bbo?symbol=AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestClearRequiresBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/clear?symbol=AAPL", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestClearSucceedsWithValidToken(t *testing.T) {
	srv, maker := newTestServer(t)
	defer srv.Close()

	token, _, err := maker.CreateToken("operator-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/admin/clear?symbol=AAPL", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestBBOWithoutSymbolIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/admin/bbo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

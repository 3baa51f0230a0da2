package upstream

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/andrebq/turnstile/auth"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestHandler(t *testing.T) {
	var seen http.Header
	var calls int
	app := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer app.Close()
	target, _ := url.Parse(app.URL)
	proxy := Handler(target)

	withPrincipal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{ID: "alice-id", Email: "alice@example.com"}))
		proxy.ServeHTTP(w, r)
	})
	apitest.Handler(withPrincipal).Get("/reports").Header(PrincipalHeader, "mallory").Expect(t).
		Status(http.StatusOK).End()
	if seen.Get(PrincipalHeader) != "alice-id" || seen.Get(EmailHeader) != "alice@example.com" {
		t.Fatalf("principal headers not forwarded: %v", seen)
	}

	apitest.Handler(proxy).Get("/reports").Header(PrincipalHeader, "mallory").Expect(t).
		Status(http.StatusOK).End()
	if v := seen.Get(PrincipalHeader); v != "" {
		t.Fatalf("client supplied identity must be dropped, got %q", v)
	}
	if calls != 2 {
		t.Fatalf("expecting 2 upstream calls got %v", calls)
	}
}

func TestHandlerUpstreamDown(t *testing.T) {
	app := httptest.NewServer(http.NotFoundHandler())
	target, _ := url.Parse(app.URL)
	app.Close()
	apitest.Handler(Handler(target)).Get("/reports").Expect(t).
		Status(http.StatusBadGateway).Assert(jsonpath.Equal("$.error", "Bad Gateway")).End()
}

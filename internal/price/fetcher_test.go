package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testFetcher() *Fetcher {
	f := NewFetcher("expiredbot test")
	// No pacing in tests.
	f.limiter = rate.NewLimiter(rate.Inf, 1)
	f.client.Timeout = 2 * time.Second
	return f
}

func priceRule() *Rule {
	return &Rule{Pattern: regexp.MustCompile(`class="priceLarge"\s*>([^<]*)<`)}
}

func TestPriceUnsupportedSiteSkipsNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
	}))
	defer srv.Close()

	res := testFetcher().Price(context.Background(), srv.URL+"/book")
	if res.Status != StatusNoRule {
		t.Fatalf("status = %v, want no_rule", res.Status)
	}
	if res.Price != "" {
		t.Fatalf("price = %q, want empty", res.Price)
	}
	if hit {
		t.Fatal("unsupported site should not be fetched")
	}
}

func TestFetchExtractsAndTrimsPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><span class="priceLarge" >  $4.99  </span></html>`))
	}))
	defer srv.Close()

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if !res.Known() {
		t.Fatalf("status = %v, want found (err: %v)", res.Status, res.Err)
	}
	if res.Price != "$4.99" {
		t.Fatalf("price = %q, want $4.99", res.Price)
	}
}

func TestFetchDecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// 0xA3 is the pound sign in Latin-1.
		w.Write([]byte(`<span class="priceLarge">`))
		w.Write([]byte{0xA3})
		w.Write([]byte(`2.50</span>`))
	}))
	defer srv.Close()

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if !res.Known() {
		t.Fatalf("status = %v, want found (err: %v)", res.Status, res.Err)
	}
	if res.Price != "£2.50" {
		t.Fatalf("price = %q, want £2.50", res.Price)
	}
}

func TestFetchEmptyCaptureIsUnparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<span class="priceLarge">   </span>`))
	}))
	defer srv.Close()

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if res.Status != StatusUnparseable {
		t.Fatalf("status = %v, want unparseable", res.Status)
	}
	if res.Known() {
		t.Fatal("an empty capture must not count as a found price")
	}
}

func TestFetchNoMatchIsUnparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>nothing here</html>`))
	}))
	defer srv.Close()

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if res.Status != StatusUnparseable {
		t.Fatalf("status = %v, want unparseable", res.Status)
	}
	if res.Price != "" {
		t.Fatalf("price = %q, want empty", res.Price)
	}
}

func TestFetchHTTPErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if res.Status != StatusUnreachable {
		t.Fatalf("status = %v, want unreachable", res.Status)
	}
}

func TestFetchNetworkErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // nothing listening anymore

	res := testFetcher().fetch(context.Background(), srv.URL, priceRule())
	if res.Status != StatusUnreachable {
		t.Fatalf("status = %v, want unreachable", res.Status)
	}
	if res.Err == nil {
		t.Fatal("expected the network error to be preserved")
	}
}
